package entities

import (
	"database/sql"
	"time"
)

type User struct {
	ID           string         `db:"id"`
	Login        string         `db:"login"`
	Password     string         `db:"password"`
	Points       int            `db:"points"`
	MembershipID sql.NullString `db:"membership_id"`
	CreatedAt    time.Time      `db:"created_at"`
}
