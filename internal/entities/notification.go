package entities

import "time"

const (
	NotificationSuccess     = "success"
	NotificationInformation = "information"
	NotificationError       = "error"
)

const (
	CategoryPoints     = "points"
	CategoryMembership = "membership"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	RelatedID string    `json:"related_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
