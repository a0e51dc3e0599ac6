package links

import (
	"time"

	"github.com/KirkDiggler/pickup/internal/common/clock"
)

// Config holds configuration for the link authority
type Config struct {
	// Secret is the shared HMAC key
	Secret []byte

	// Issuer is stamped into and required on every token
	Issuer string

	Clock clock.Clock
}

// Claim is what a verified token proves
type Claim struct {
	SessionID string
	Phone     string
	ExpiresAt time.Time
}

type IssueInput struct {
	SessionID string
	Phone     string
	TTL       time.Duration
}

type IssueOutput struct {
	Token     string
	ExpiresAt time.Time
}

type VerifyInput struct {
	Token string
}
