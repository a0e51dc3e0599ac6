package directory

import (
	"github.com/KirkDiggler/pickup/internal/common/clock"
	"github.com/KirkDiggler/pickup/internal/common/uuid"
	"github.com/KirkDiggler/pickup/internal/models"
	friendRepo "github.com/KirkDiggler/pickup/internal/repositories/friend"
	"go.uber.org/zap"
)

// Config holds configuration for the directory service
type Config struct {
	// DefaultCountryCode is prefixed to 10-digit national numbers; defaults to "1"
	DefaultCountryCode string

	// PlaceholderName is used when a friend is created without a name
	PlaceholderName string

	// Repository dependencies
	FriendRepo friendRepo.Repository

	// Service dependencies
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
	Logger        *zap.Logger
}

type ResolveInput struct {
	// Phone is raw user input
	Phone string

	// Name is used only when the friend is created
	Name string
}

type ResolveOutput struct {
	Friend *models.Friend

	// Created is set when this call created the friend
	Created bool
}

type UpdateInput struct {
	Phone string

	// Name is applied when non-empty
	Name string

	// Active is applied when non-nil
	Active *bool
}

type UpdateOutput struct {
	Friend *models.Friend
}

// ImportRecord is one row of a batch import
type ImportRecord struct {
	Name   string
	Phone  string
	Active bool
}

type ImportInput struct {
	Records []ImportRecord
}

// ImportResult reports the outcome of one record; exactly one field is set
type ImportResult struct {
	Friend *models.Friend
	Err    error
}

type ImportOutput struct {
	// Results line up with the input records
	Results []ImportResult
}

type GetFriendInput struct {
	FriendID string
}

type GetFriendByPhoneInput struct {
	Phone string
}
