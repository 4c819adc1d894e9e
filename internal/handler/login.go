package handler

import (
	"errors"
	"net/http"

	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
	"go.uber.org/zap"
)

// Login opens a session for an existing customer. Unknown logins and wrong
// passwords both answer 401.
func (h *Handler) Login(res http.ResponseWriter, req *http.Request) {
	credentials, err := decodeCredentials(req)
	if err != nil {
		zap.L().Info("rejected login request", zap.Error(err))

		res.WriteHeader(http.StatusBadRequest)
		return
	}

	userID, err := h.storage.GetUser(req.Context(), credentials.Login, hashPassword(credentials.Password))
	switch {
	case errors.Is(err, storage.ErrNoRows):
		zap.L().Info("invalid credentials", zap.String("login", credentials.Login))

		res.WriteHeader(http.StatusUnauthorized)
		return
	case err != nil:
		zap.L().Error("error get user", zap.String("login", credentials.Login), zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.startSession(res, userID)
}
