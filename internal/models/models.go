package models

type AuthorizationRequest struct {
	Login    string `json:"login" validate:"required,max=64,nospace"`
	Password string `json:"password" validate:"required"`
}

type MembershipResponse struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	MinPoints int      `json:"min_points"`
	MaxPoints int      `json:"max_points,omitempty"`
	Benefits  []string `json:"benefits"`
	Popular   bool     `json:"popular"`
	Crown     string   `json:"crown,omitempty"`
}

type GetMembershipsResponse []MembershipResponse

type GetPointsResponse struct {
	Points     int                 `json:"points"`
	Membership *MembershipResponse `json:"membership,omitempty"`
}

type HistoryResponse struct {
	Action    string `json:"action"`
	Points    int    `json:"points"`
	CreatedAt string `json:"created_at"`
}

type GetHistoryResponse []HistoryResponse

type AwardResponse struct {
	Success            bool                `json:"success"`
	PointsAwarded      int                 `json:"points_awarded"`
	NewPointsTotal     int                 `json:"new_points_total,omitempty"`
	MembershipUpgraded bool                `json:"membership_upgraded"`
	Membership         *MembershipResponse `json:"membership,omitempty"`
}

type CartItemRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type CartRequest struct {
	Items []CartItemRequest `json:"items"`
	Total *float64          `json:"total,omitempty"`
}

type TotalsResponse struct {
	Subtotal     float64 `json:"subtotal"`
	VATAmount    float64 `json:"vat_amount"`
	ShippingCost float64 `json:"shipping_cost"`
	TotalAmount  float64 `json:"total_amount"`
}

type ItemErrorResponse struct {
	ProductID    string  `json:"product_id,omitempty"`
	Code         string  `json:"code"`
	Message      string  `json:"message"`
	CurrentPrice float64 `json:"current_price,omitempty"`
	Available    *int    `json:"available,omitempty"`
}

type CartErrorResponse struct {
	Error string              `json:"error"`
	Items []ItemErrorResponse `json:"items"`
}

type OrderItemResponse struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderResponse struct {
	Number       string              `json:"number"`
	Status       string              `json:"status"`
	TotalAmount  float64             `json:"total_amount"`
	ShippingCost float64             `json:"shipping_cost"`
	VATAmount    float64             `json:"vat_amount"`
	Items        []OrderItemResponse `json:"items,omitempty"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
}

type GetOrdersResponse []OrderResponse

type PlaceOrderResponse struct {
	Order  OrderResponse `json:"order"`
	Points AwardResponse `json:"points"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReviewResponse struct {
	Created bool          `json:"created"`
	Points  AwardResponse `json:"points"`
}

type InteractionRequest struct {
	Kind string `json:"kind"`
}
