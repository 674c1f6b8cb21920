// Package token issues and verifies the HS256 bearer tokens handed out at login.
//
// Verify is the only way to read a subject out of a token. There is no
// separate claim accessor, so a caller cannot skip signature and expiry checks.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-crud-api/internal/model"
)

// MinSecretLength is the smallest HS256 key accepted (256 bits).
const MinSecretLength = 32

var ErrWeakSecret = fmt.Errorf("token: secret must be at least %d bytes", MinSecretLength)

type Status int

const (
	StatusMalformed Status = iota
	StatusInvalidSignature
	StatusExpired
	StatusValid
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusExpired:
		return "expired"
	case StatusInvalidSignature:
		return "invalid_signature"
	default:
		return "malformed"
	}
}

// Err maps a failed status to its sentinel error; nil for StatusValid.
func (s Status) Err() error {
	switch s {
	case StatusValid:
		return nil
	case StatusExpired:
		return model.ErrTokenExpired
	case StatusInvalidSignature:
		return model.ErrTokenInvalidSignature
	default:
		return model.ErrTokenMalformed
	}
}

// Verification is the outcome of Verify. The zero value is a malformed token.
type Verification struct {
	Status    Status
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (v Verification) Valid() bool {
	return v.Status == StatusValid && v.Subject != ""
}

type Issued struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Option func(*Codec)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

type Codec struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewCodec(secret string, ttl time.Duration, opts ...Option) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		return nil, errors.New("token: ttl must be positive")
	}
	// exp is encoded in whole seconds.
	if ttl%time.Second != 0 {
		return nil, errors.New("token: ttl must be a whole number of seconds")
	}

	c := &Codec{
		key: []byte(secret),
		ttl: ttl,
		now: time.Now,
		// Expiry is checked by hand so a token stays valid at exactly exp.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithStrictDecoding(),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

func (c *Codec) Issue(username string) (Issued, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Issued{}, errors.New("token: subject is required")
	}

	issuedAt := c.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(c.ttl)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}).SignedString(c.key)
	if err != nil {
		return Issued{}, fmt.Errorf("sign token: %w", err)
	}

	return Issued{Token: signed, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

func (c *Codec) Verify(tokenString string) Verification {
	claims := &jwt.RegisteredClaims{}
	_, err := c.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
			return Verification{Status: StatusInvalidSignature}
		}
		return Verification{Status: StatusMalformed}
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return Verification{Status: StatusMalformed}
	}

	result := Verification{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time.UTC()
	}

	if c.now().After(result.ExpiresAt) {
		return Verification{Status: StatusExpired, ExpiresAt: result.ExpiresAt}
	}

	result.Status = StatusValid
	return result
}
