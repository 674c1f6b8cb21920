package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"go-crud-api/internal/model"
)

const testSecret = "supersecretkeysupersecretkey12345678"

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestCodec(t *testing.T, ttl time.Duration) (*Codec, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec, err := NewCodec(testSecret, ttl, WithClock(clock.Now))
	require.NoError(t, err)

	return codec, clock
}

func TestNewCodec(t *testing.T) {
	t.Parallel()

	_, err := NewCodec("too-short", time.Hour)
	require.ErrorIs(t, err, ErrWeakSecret)

	_, err = NewCodec(testSecret, 0)
	require.Error(t, err)

	_, err = NewCodec(testSecret, 1500*time.Millisecond)
	require.ErrorContains(t, err, "whole number of seconds")
}

func TestIssue(t *testing.T) {
	t.Parallel()

	codec, clock := newTestCodec(t, 8640000*time.Millisecond)

	issued, err := codec.Issue("admin")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(issued.Token, "eyJ"))
	require.Len(t, strings.Split(issued.Token, "."), 3)
	require.Equal(t, clock.now, issued.IssuedAt)
	require.Equal(t, clock.now.Add(2*time.Hour+24*time.Minute), issued.ExpiresAt)

	again, err := codec.Issue("admin")
	require.NoError(t, err)
	require.Equal(t, issued.Token, again.Token, "same clock reading must give the same token")

	_, err = codec.Issue("  ")
	require.Error(t, err)
}

func TestVerifyLifetime(t *testing.T) {
	t.Parallel()

	codec, clock := newTestCodec(t, time.Hour)
	issued, err := codec.Issue("admin")
	require.NoError(t, err)

	result := codec.Verify(issued.Token)
	require.True(t, result.Valid())
	require.Equal(t, "admin", result.Subject)
	require.Equal(t, issued.IssuedAt, result.IssuedAt)
	require.Equal(t, issued.ExpiresAt, result.ExpiresAt)

	clock.now = issued.ExpiresAt.Add(-time.Second)
	require.True(t, codec.Verify(issued.Token).Valid())

	clock.now = issued.ExpiresAt
	require.True(t, codec.Verify(issued.Token).Valid(), "token is still valid at exactly expiresAt")

	clock.now = issued.ExpiresAt.Add(time.Nanosecond)
	expired := codec.Verify(issued.Token)
	require.False(t, expired.Valid())
	require.Equal(t, StatusExpired, expired.Status)
	require.Empty(t, expired.Subject)
	require.ErrorIs(t, expired.Status.Err(), model.ErrTokenExpired)
}

func TestVerifyRejectsTampering(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec(t, time.Hour)
	issued, err := codec.Issue("admin")
	require.NoError(t, err)

	payloadStart := strings.Index(issued.Token, ".") + 1
	for i := payloadStart; i < len(issued.Token); i++ {
		if issued.Token[i] == '.' {
			continue
		}

		replacement := byte('A')
		if issued.Token[i] == 'A' {
			replacement = 'B'
		}
		tampered := issued.Token[:i] + string(replacement) + issued.Token[i+1:]

		result := codec.Verify(tampered)
		require.False(t, result.Valid(), "tampered byte %d accepted", i)
		require.Empty(t, result.Subject)
	}
}

func TestVerifyFailureKinds(t *testing.T) {
	t.Parallel()

	codec, clock := newTestCodec(t, time.Hour)

	otherKey, err := NewCodec(strings.Repeat("x", MinSecretLength), time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	foreign, err := otherKey.Issue("admin")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "admin",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
		want  Status
	}{
		{name: "empty", token: "", want: StatusMalformed},
		{name: "garbage", token: "garbage", want: StatusMalformed},
		{name: "two segments", token: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJhZG1pbiJ9", want: StatusMalformed},
		{name: "foreign key", token: foreign.Token, want: StatusInvalidSignature},
		{name: "alg none", token: noneToken, want: StatusInvalidSignature},
		{name: "other algorithm", token: hs512, want: StatusInvalidSignature},
		{name: "missing subject", token: noSubject, want: StatusMalformed},
		{name: "missing expiry", token: noExpiry, want: StatusMalformed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := codec.Verify(tc.token)
			require.False(t, result.Valid())
			require.Equal(t, tc.want, result.Status)
			require.Error(t, result.Status.Err())
		})
	}
}

func TestZeroVerificationIsInvalid(t *testing.T) {
	t.Parallel()

	var v Verification
	require.False(t, v.Valid())
	require.Equal(t, "malformed", v.Status.String())
}
