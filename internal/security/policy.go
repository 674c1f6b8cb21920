// Package security holds the single authentication policy the server is built from.
package security

import (
	"fmt"
	"strings"
)

type UserSource string

const (
	UserSourceMemory   UserSource = "memory"
	UserSourceDatabase UserSource = "database"
	UserSourceFile     UserSource = "file"
)

func ParseUserSource(raw string) (UserSource, error) {
	switch source := UserSource(strings.ToLower(strings.TrimSpace(raw))); source {
	case UserSourceMemory, UserSourceDatabase, UserSourceFile:
		return source, nil
	default:
		return "", fmt.Errorf("unknown user source %q", raw)
	}
}

// DefaultPublicPaths are reachable without a principal.
var DefaultPublicPaths = []string{
	"/auth/login",
	"/api/public",
	"/health",
	"/ready",
	"/metrics",
	"/login",
	"/openapi.yaml",
	"/openapi.json",
	"/swagger",
}

type Policy struct {
	UserSource        UserSource
	FormLoginEnabled  bool
	StatelessSessions bool
	PublicPaths       []string
}

func NewPolicy(userSource string, formLoginEnabled bool, statelessSessions bool) (Policy, error) {
	source, err := ParseUserSource(userSource)
	if err != nil {
		return Policy{}, err
	}

	policy := Policy{
		UserSource:        source,
		FormLoginEnabled:  formLoginEnabled,
		StatelessSessions: statelessSessions,
		PublicPaths:       append([]string(nil), DefaultPublicPaths...),
	}
	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}

	return policy, nil
}

func (p Policy) Validate() error {
	if p.FormLoginEnabled && p.StatelessSessions {
		return fmt.Errorf("form login needs server sessions; disable stateless sessions")
	}
	return nil
}

// SessionsEnabled reports whether a session cookie may carry the principal.
func (p Policy) SessionsEnabled() bool {
	return !p.StatelessSessions
}

// IsPublic matches exact paths and "/prefix/**" patterns.
func (p Policy) IsPublic(path string) bool {
	for _, pattern := range p.PublicPaths {
		if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == pattern {
			return true
		}
	}
	return false
}
