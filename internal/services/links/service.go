package links

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultIssuer = "pickup"

// linkClaims is the JWT payload of a booking link
type linkClaims struct {
	SessionID string `json:"sid"`
	Phone     string `json:"phone"`
	jwt.RegisteredClaims
}

type service struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// New creates a new link authority
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if len(cfg.Secret) == 0 {
		return nil, ErrEmptySecret
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = defaultIssuer
	}

	return &service{
		secret: cfg.Secret,
		issuer: issuer,
		now:    cfg.Clock.Now,
	}, nil
}

// Issue signs a HS256 token for a session and phone
func (s *service) Issue(input *IssueInput) (*IssueOutput, error) {
	if input == nil || input.SessionID == "" || input.Phone == "" || input.TTL <= 0 {
		return nil, ErrInvalidInput
	}

	now := s.now()
	expiresAt := now.Add(input.TTL)

	claims := linkClaims{
		SessionID: input.SessionID,
		Phone:     input.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &IssueOutput{
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify parses the token and fails closed
func (s *service) Verify(input *VerifyInput) (*Claim, error) {
	if input == nil || strings.TrimSpace(input.Token) == "" {
		return nil, ErrInvalidToken
	}

	var claims linkClaims
	token, err := jwt.ParseWithClaims(input.Token, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.SessionID == "" || claims.Phone == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	return &Claim{
		SessionID: claims.SessionID,
		Phone:     claims.Phone,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// LinkURL joins a public base URL, a path and a token query parameter
func LinkURL(baseURL, path, token string) string {
	values := url.Values{}
	values.Set("token", token)
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/") + "?" + values.Encode()
}
