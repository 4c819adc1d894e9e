package handler

import (
	"errors"
	"net/http"

	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
	"go.uber.org/zap"
)

func (h *Handler) Register(res http.ResponseWriter, req *http.Request) {
	credentials, err := decodeCredentials(req)
	if err != nil {
		zap.L().Info("error validate register request", zap.Error(err))

		res.WriteHeader(http.StatusBadRequest)
		return
	}

	userID, err := h.storage.CreateUser(req.Context(), credentials.Login, hashPassword(credentials.Password))
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			zap.L().Info("error login already exists", zap.String("login", credentials.Login))

			res.WriteHeader(http.StatusConflict)
			return
		}

		zap.L().Info("error create user", zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.engagement.SignupBonus(req.Context(), userID)

	h.startSession(res, userID)
}
