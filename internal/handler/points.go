package handler

import (
	"net/http"
	"time"

	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/models"
	"go.uber.org/zap"
)

func (h *Handler) GetMemberships(res http.ResponseWriter, req *http.Request) {
	memberships, err := h.storage.GetMemberships(req.Context())
	if err != nil {
		zap.L().Info("error get memberships", zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	response := make(models.GetMembershipsResponse, 0, len(memberships))
	for _, membership := range memberships {
		response = append(response, toMembershipResponse(membership))
	}

	h.writeJSON(res, http.StatusOK, response)
}

func (h *Handler) GetPoints(res http.ResponseWriter, req *http.Request) {
	userID := h.getUserIDFromReqContext(req)
	if userID == "" {
		res.WriteHeader(http.StatusUnauthorized)
		return
	}

	user, err := h.storage.GetUserByID(req.Context(), userID)
	if err != nil {
		zap.L().Info("error get user", zap.String("user_id", userID), zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	response := models.GetPointsResponse{Points: user.Points}

	if user.MembershipID.Valid {
		memberships, err := h.storage.GetMemberships(req.Context())
		if err != nil {
			zap.L().Info("error get memberships", zap.Error(err))

			res.WriteHeader(http.StatusInternalServerError)
			return
		}

		for _, membership := range memberships {
			if membership.ID == user.MembershipID.String {
				m := toMembershipResponse(membership)
				response.Membership = &m
				break
			}
		}
	}

	h.writeJSON(res, http.StatusOK, response)
}

func (h *Handler) GetPointsHistory(res http.ResponseWriter, req *http.Request) {
	userID := h.getUserIDFromReqContext(req)
	if userID == "" {
		res.WriteHeader(http.StatusUnauthorized)
		return
	}

	history, err := h.storage.GetMembershipHistory(req.Context(), userID)
	if err != nil {
		zap.L().Info("error get membership history", zap.String("user_id", userID), zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	if len(history) == 0 {
		res.WriteHeader(http.StatusNoContent)
		return
	}

	response := make(models.GetHistoryResponse, 0, len(history))
	for _, entry := range history {
		response = append(response, models.HistoryResponse{
			Action:    entry.Action,
			Points:    entry.Points,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
	}

	h.writeJSON(res, http.StatusOK, response)
}

func (h *Handler) ClaimDailyLogin(res http.ResponseWriter, req *http.Request) {
	userID := h.getUserIDFromReqContext(req)
	if userID == "" {
		res.WriteHeader(http.StatusUnauthorized)
		return
	}

	result := h.engagement.DailyLogin(req.Context(), userID, h.now())

	h.writeJSON(res, http.StatusOK, toAwardResponse(result))
}
