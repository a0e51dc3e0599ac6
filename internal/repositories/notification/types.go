package notification

import (
	"time"

	"github.com/KirkDiggler/pickup/internal/models"
)

type ClaimInput struct {
	DedupeKey string

	// Lease bounds how long a crashed sender can block the key
	Lease time.Duration
}

type PutRecordInput struct {
	Record *models.NotificationRecord
}

type ExistsInput struct {
	DedupeKey string
}

type GetRecordInput struct {
	DedupeKey string
}
