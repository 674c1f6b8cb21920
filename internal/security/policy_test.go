package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPolicy(t *testing.T) {
	t.Parallel()

	policy, err := NewPolicy("Database", false, true)
	require.NoError(t, err)
	require.Equal(t, UserSourceDatabase, policy.UserSource)
	require.False(t, policy.SessionsEnabled())

	_, err = NewPolicy("ldap", false, true)
	require.Error(t, err)

	_, err = NewPolicy("memory", true, true)
	require.Error(t, err)

	policy, err = NewPolicy("file", true, false)
	require.NoError(t, err)
	require.True(t, policy.SessionsEnabled())
}

func TestPolicyIsPublic(t *testing.T) {
	t.Parallel()

	policy := Policy{PublicPaths: []string{"/auth/login", "/h2-console/**"}}

	require.True(t, policy.IsPublic("/auth/login"))
	require.False(t, policy.IsPublic("/auth/login/extra"))
	require.True(t, policy.IsPublic("/h2-console"))
	require.True(t, policy.IsPublic("/h2-console/tables"))
	require.False(t, policy.IsPublic("/h2-consoleX"))
	require.False(t, policy.IsPublic("/books"))
}
