package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/middleware"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/models"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/checkout"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/converter"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/engagement"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/jwttoken"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/orderstatus"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/points"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
	"go.uber.org/zap"
)

type Handler struct {
	storage    storage.Repository
	tokens     *jwttoken.Manager
	checkout   *checkout.Service
	orders     *orderstatus.Service
	engagement *engagement.Service
	now        func() time.Time
}

func NewHandler(
	storage storage.Repository,
	tokens *jwttoken.Manager,
	checkout *checkout.Service,
	orders *orderstatus.Service,
	engagement *engagement.Service,
) *Handler {
	return &Handler{
		storage:    storage,
		tokens:     tokens,
		checkout:   checkout,
		orders:     orders,
		engagement: engagement,
		now:        time.Now,
	}
}

func (h *Handler) getUserIDFromReqContext(req *http.Request) string {
	return middleware.UserID(req.Context())
}

func (h *Handler) writeJSON(res http.ResponseWriter, status int, response interface{}) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)

	jsonEncoder := json.NewEncoder(res)
	if err := jsonEncoder.Encode(response); err != nil {
		zap.L().Info("cannot encode response JSON body", zap.Error(err))
	}
}

func toMembershipResponse(membership entities.Membership) models.MembershipResponse {
	benefits := []string(membership.Benefits)
	if benefits == nil {
		benefits = []string{}
	}

	return models.MembershipResponse{
		ID:        membership.ID,
		Title:     membership.Title,
		MinPoints: membership.MinPoints,
		MaxPoints: membership.MaxPoints,
		Benefits:  benefits,
		Popular:   membership.Popular,
		Crown:     membership.Crown,
	}
}

func toAwardResponse(result points.Result) models.AwardResponse {
	response := models.AwardResponse{
		Success:            result.Success,
		PointsAwarded:      result.PointsAwarded,
		NewPointsTotal:     result.NewPointsTotal,
		MembershipUpgraded: result.MembershipUpgraded,
	}

	if result.MembershipUpgraded && result.Tier != nil {
		membership := toMembershipResponse(*result.Tier)
		response.Membership = &membership
	}

	return response
}

func toOrderResponse(order entities.Order) models.OrderResponse {
	response := models.OrderResponse{
		Number:       order.Number,
		Status:       order.Status,
		TotalAmount:  converter.FormatAmount(order.TotalAmount),
		ShippingCost: converter.FormatAmount(order.ShippingCost),
		VATAmount:    converter.FormatAmount(order.VATAmount),
		CreatedAt:    order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    order.UpdatedAt.Format(time.RFC3339),
	}

	for _, item := range order.Items {
		response.Items = append(response.Items, models.OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     converter.FormatAmount(item.Price),
		})
	}

	return response
}
