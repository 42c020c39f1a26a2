package entity

import (
	"time"

	"github.com/google/uuid"
)

// Needer is a person requesting blood. BloodGroup is the group they need,
// not necessarily their own.
type Needer struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	BloodGroup  string    `db:"blood_group" json:"bloodGroup"`
	Phone       string    `db:"phone" json:"phone"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	Verified    bool      `db:"verified" json:"verified"`
	UrgencyNote string    `db:"urgency_note" json:"urgencyNote,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
