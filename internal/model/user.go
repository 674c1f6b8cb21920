package model

import (
	"strings"
	"time"
)

const rolePrefix = "ROLE_"

// Identity is a stored credential record as returned by a user source.
type Identity struct {
	Username     string    `json:"username" yaml:"username"`
	PasswordHash string    `json:"password_hash" yaml:"password_hash"`
	Role         string    `json:"role" yaml:"role"`
	CreatedAt    time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Principal is the authenticated identity attached to one request.
type Principal struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
}

// NewPrincipal builds a principal from a freshly loaded identity.
func NewPrincipal(identity Identity) *Principal {
	authorities := []string{}
	if role := NormalizeRole(identity.Role); role != "" {
		authorities = append(authorities, role)
	}

	return &Principal{Username: identity.Username, Authorities: authorities}
}

// HasRole reports whether the principal carries the role, with or without the ROLE_ prefix.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}

	want := NormalizeRole(role)
	for _, authority := range p.Authorities {
		if authority == want {
			return true
		}
	}

	return false
}

// NormalizeRole upper-cases a role and adds the ROLE_ prefix when missing.
func NormalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return ""
	}
	if strings.HasPrefix(role, rolePrefix) {
		return role
	}

	return rolePrefix + role
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}
