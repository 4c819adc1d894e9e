package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/models"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/checkout"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/converter"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (h *Handler) ValidateCart(res http.ResponseWriter, req *http.Request) {
	cart, ok := h.decodeCart(res, req)
	if !ok {
		return
	}

	quote, err := h.checkout.Validate(req.Context(), cart.items)
	if err != nil {
		h.writeCheckoutError(res, err)
		return
	}

	h.writeJSON(res, http.StatusOK, models.TotalsResponse{
		Subtotal:     converter.FormatAmount(quote.Totals.Subtotal),
		VATAmount:    converter.FormatAmount(quote.Totals.VATAmount),
		ShippingCost: converter.FormatAmount(quote.Totals.ShippingCost),
		TotalAmount:  converter.FormatAmount(quote.Totals.TotalAmount),
	})
}

type cart struct {
	items []checkout.CartItem
	total *decimal.Decimal
}

func (h *Handler) decodeCart(res http.ResponseWriter, req *http.Request) (cart, bool) {
	var cartRequest models.CartRequest

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(&cartRequest); err != nil {
		zap.L().Info("cannot decode request to json", zap.Error(err))

		res.WriteHeader(http.StatusBadRequest)
		return cart{}, false
	}

	items := make([]checkout.CartItem, 0, len(cartRequest.Items))
	for _, item := range cartRequest.Items {
		items = append(items, checkout.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     converter.ParseAmount(item.Price),
		})
	}

	c := cart{items: items}
	if cartRequest.Total != nil {
		total := converter.ParseAmount(*cartRequest.Total)
		c.total = &total
	}

	return c, true
}

func (h *Handler) writeCheckoutError(res http.ResponseWriter, err error) {
	var validationErr *checkout.ValidationError

	switch {
	case errors.As(err, &validationErr):
		response := models.CartErrorResponse{Error: validationErr.Error()}

		for _, item := range validationErr.Items {
			itemResponse := models.ItemErrorResponse{
				ProductID:    item.ProductID,
				Code:         item.Code,
				Message:      item.Error(),
				CurrentPrice: converter.FormatAmount(item.CurrentPrice),
			}

			if item.Code == checkout.CodeInsufficientStock {
				available := item.Available
				itemResponse.Available = &available
			}

			response.Items = append(response.Items, itemResponse)
		}

		h.writeJSON(res, http.StatusUnprocessableEntity, response)
	case errors.Is(err, checkout.ErrEmptyCart):
		res.WriteHeader(http.StatusBadRequest)
	default:
		zap.L().Info("error checkout", zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
	}
}
