package notification

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/pickup/internal/repositories/notification Repository

import (
	"context"

	"github.com/KirkDiggler/pickup/internal/models"
)

// Repository stores one record per dedupe key
type Repository interface {
	// Claim atomically reserves a dedupe key for an in-flight send. It returns
	// false when the key already has a record or an unexpired claim.
	Claim(ctx context.Context, input *ClaimInput) (bool, error)

	// PutRecord stores the final record for a key, replacing any claim
	PutRecord(ctx context.Context, input *PutRecordInput) error

	// Exists reports whether a key has a record or a claim
	Exists(ctx context.Context, input *ExistsInput) (bool, error)

	// GetRecord retrieves the final record for a key
	GetRecord(ctx context.Context, input *GetRecordInput) (*models.NotificationRecord, error)
}
