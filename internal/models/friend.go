package models

import (
	"time"
)

// Friend is a participant identified by phone number
type Friend struct {
	// ID is the unique identifier for the friend
	ID string

	// Name is the display name, changed only through admin update or import
	Name string

	// Phone is the canonical E.164 phone number
	Phone string

	// Active gates whether the friend receives scheduled invites
	Active bool

	// CreatedAt is when the friend was first seen
	CreatedAt time.Time

	// UpdatedAt is when the friend was last changed
	UpdatedAt time.Time
}
