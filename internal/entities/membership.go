package entities

import (
	"time"

	"github.com/lib/pq"
)

// Membership is a tier of the loyalty catalog. MaxPoints is display metadata,
// tier selection only looks at MinPoints.
type Membership struct {
	ID        string         `db:"id"`
	Title     string         `db:"title"`
	MinPoints int            `db:"min_points"`
	MaxPoints int            `db:"max_points"`
	Benefits  pq.StringArray `db:"benefits"`
	Popular   bool           `db:"popular"`
	Crown     string         `db:"crown"`
}

// MembershipHistory is an append-only ledger row. Action doubles as the
// idempotency key for one-shot awards.
type MembershipHistory struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Action    string    `db:"action"`
	Points    int       `db:"points"`
	OneShot   bool      `db:"one_shot"`
	CreatedAt time.Time `db:"created_at"`
}
