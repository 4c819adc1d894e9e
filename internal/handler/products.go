package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/models"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/engagement"
	"go.uber.org/zap"
)

func (h *Handler) SubmitReview(res http.ResponseWriter, req *http.Request) {
	userID := h.getUserIDFromReqContext(req)
	if userID == "" {
		res.WriteHeader(http.StatusUnauthorized)
		return
	}

	var reviewRequest models.ReviewRequest

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(&reviewRequest); err != nil {
		zap.L().Info("cannot decode request to json", zap.Error(err))

		res.WriteHeader(http.StatusBadRequest)
		return
	}

	created, result, err := h.engagement.SubmitReview(req.Context(), entities.Review{
		UserID:    userID,
		ProductID: chi.URLParam(req, "id"),
		Rating:    reviewRequest.Rating,
		Comment:   reviewRequest.Comment,
	})
	if err != nil {
		h.writeEngagementError(res, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	h.writeJSON(res, status, models.ReviewResponse{
		Created: created,
		Points:  toAwardResponse(result),
	})
}

func (h *Handler) TrackInteraction(res http.ResponseWriter, req *http.Request) {
	userID := h.getUserIDFromReqContext(req)
	if userID == "" {
		res.WriteHeader(http.StatusUnauthorized)
		return
	}

	var interactionRequest models.InteractionRequest

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(&interactionRequest); err != nil {
		zap.L().Info("cannot decode request to json", zap.Error(err))

		res.WriteHeader(http.StatusBadRequest)
		return
	}

	result, err := h.engagement.TrackInteraction(req.Context(), userID, chi.URLParam(req, "id"), interactionRequest.Kind)
	if err != nil {
		h.writeEngagementError(res, err)
		return
	}

	h.writeJSON(res, http.StatusOK, toAwardResponse(result))
}

func (h *Handler) writeEngagementError(res http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engagement.ErrInvalidRating), errors.Is(err, engagement.ErrUnknownInteraction):
		res.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, engagement.ErrProductNotFound):
		res.WriteHeader(http.StatusNotFound)
	default:
		zap.L().Info("error engagement", zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
	}
}
