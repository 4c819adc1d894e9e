package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/models"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/checkout"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/orderstatus"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
	"go.uber.org/zap"
)

func (h *Handler) PlaceOrder(res http.ResponseWriter, req *http.Request) {
	userID := h.getUserIDFromReqContext(req)
	if userID == "" {
		res.WriteHeader(http.StatusUnauthorized)
		return
	}

	cart, ok := h.decodeCart(res, req)
	if !ok {
		return
	}

	result, err := h.checkout.PlaceOrder(req.Context(), checkout.PlaceOrderRequest{
		UserID:      userID,
		Items:       cart.items,
		ClientTotal: cart.total,
	})
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientStock) {
			zap.L().Info("stock changed while placing order", zap.String("user_id", userID), zap.Error(err))

			res.WriteHeader(http.StatusConflict)
			return
		}

		h.writeCheckoutError(res, err)
		return
	}

	h.writeJSON(res, http.StatusCreated, models.PlaceOrderResponse{
		Order:  toOrderResponse(result.Order),
		Points: toAwardResponse(result.Points),
	})
}

func (h *Handler) GetOrders(res http.ResponseWriter, req *http.Request) {
	userID := h.getUserIDFromReqContext(req)
	if userID == "" {
		res.WriteHeader(http.StatusUnauthorized)
		return
	}

	orders, err := h.storage.GetUserOrders(req.Context(), userID)
	if err != nil {
		zap.L().Info("error get user orders from database", zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	if len(orders) == 0 {
		zap.L().Info("empty user orders", zap.String("user_id", userID))

		res.WriteHeader(http.StatusNoContent)
		return
	}

	responseOrders := make(models.GetOrdersResponse, 0, len(orders))
	for _, order := range orders {
		responseOrders = append(responseOrders, toOrderResponse(order))
	}

	h.writeJSON(res, http.StatusOK, responseOrders)
}

// UpdateOrderStatus lets a customer cancel their own order.
func (h *Handler) UpdateOrderStatus(res http.ResponseWriter, req *http.Request) {
	userID := h.getUserIDFromReqContext(req)
	if userID == "" {
		res.WriteHeader(http.StatusUnauthorized)
		return
	}

	h.updateOrderStatus(res, req, userID)
}

// FulfilOrder moves any order through the status machine on behalf of staff.
func (h *Handler) FulfilOrder(res http.ResponseWriter, req *http.Request) {
	h.updateOrderStatus(res, req, "")
}

func (h *Handler) updateOrderStatus(res http.ResponseWriter, req *http.Request, userID string) {
	var statusRequest models.UpdateOrderStatusRequest

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(&statusRequest); err != nil {
		zap.L().Info("cannot decode request to json", zap.Error(err))

		res.WriteHeader(http.StatusBadRequest)
		return
	}

	order, err := h.orders.Update(req.Context(), chi.URLParam(req, "number"), userID, statusRequest.Status)
	if err != nil {
		zap.L().Info("error update order status", zap.String("status", statusRequest.Status), zap.Error(err))

		switch {
		case errors.Is(err, orderstatus.ErrInvalidNumber):
			res.WriteHeader(http.StatusUnprocessableEntity)
		case errors.Is(err, storage.ErrNoRows):
			res.WriteHeader(http.StatusNotFound)
		case errors.Is(err, orderstatus.ErrForbidden):
			res.WriteHeader(http.StatusForbidden)
		case errors.Is(err, orderstatus.ErrUnknownStatus):
			res.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, orderstatus.ErrInvalidTransition), errors.Is(err, orderstatus.ErrFinalState):
			res.WriteHeader(http.StatusConflict)
		default:
			res.WriteHeader(http.StatusInternalServerError)
		}

		return
	}

	h.writeJSON(res, http.StatusOK, toOrderResponse(order))
}
