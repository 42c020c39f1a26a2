package entity

import (
	"time"

	"github.com/google/uuid"
)

// Donor is a registered blood donor. IDNumber is the cleaned 12-digit
// identity number and is unique across donors.
type Donor struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	IDNumber   string    `db:"id_number" json:"idNumber"`
	BloodGroup string    `db:"blood_group" json:"bloodGroup"`
	Age        *int      `db:"age" json:"age,omitempty"`
	Gender     string    `db:"gender" json:"gender,omitempty"`
	Phone      string    `db:"phone" json:"phone"`
	Latitude   float64   `db:"latitude" json:"latitude"`
	Longitude  float64   `db:"longitude" json:"longitude"`
	Verified   bool      `db:"verified" json:"verified"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
