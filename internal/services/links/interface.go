package links

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/pickup/internal/services/links Service

// Service issues and verifies signed booking links
type Service interface {
	// Issue signs a token binding a session and a phone until now+TTL
	Issue(input *IssueInput) (*IssueOutput, error)

	// Verify checks signature, algorithm and expiry. Every failure is
	// ErrInvalidToken.
	Verify(input *VerifyInput) (*Claim, error)
}
