package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "auth:verified:"

type cachedVerification struct {
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Verifier puts an optional Redis cache of positive results in front of a Codec.
// With a nil client every call goes straight to the codec.
//
// Cache keys carry a fingerprint of the signing key, so entries written under
// one secret are never read back by a verifier holding another.
type Verifier struct {
	codec       *Codec
	client      *redis.Client
	ttl         time.Duration
	fingerprint string
}

func NewVerifier(codec *Codec, client *redis.Client, ttl time.Duration) *Verifier {
	sum := sha256.Sum256(codec.key)
	return &Verifier{
		codec:       codec,
		client:      client,
		ttl:         ttl,
		fingerprint: hex.EncodeToString(sum[:8]),
	}
}

// Verify never fails because of the cache: Redis errors fall back to the codec
// and only valid results are ever stored.
func (v *Verifier) Verify(ctx context.Context, tokenString string) Verification {
	if v.client == nil || v.ttl <= 0 {
		return v.codec.Verify(tokenString)
	}

	key := v.cacheKey(tokenString)
	if hit, ok := v.lookup(ctx, key); ok {
		return hit
	}

	result := v.codec.Verify(tokenString)
	if result.Valid() {
		v.store(ctx, key, result)
	}

	return result
}

func (v *Verifier) lookup(ctx context.Context, key string) (Verification, bool) {
	raw, err := v.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("verification cache read failed", "error", err)
		}
		return Verification{}, false
	}

	var cached cachedVerification
	if err := json.Unmarshal(raw, &cached); err != nil || cached.Subject == "" {
		return Verification{}, false
	}

	expiresAt := time.Unix(cached.ExpiresAt, 0).UTC()
	if v.codec.now().After(expiresAt) {
		if err := v.client.Del(ctx, key).Err(); err != nil {
			slog.Warn("verification cache delete failed", "error", err)
		}
		return Verification{Status: StatusExpired, ExpiresAt: expiresAt}, true
	}

	return Verification{
		Status:    StatusValid,
		Subject:   cached.Subject,
		IssuedAt:  time.Unix(cached.IssuedAt, 0).UTC(),
		ExpiresAt: expiresAt,
	}, true
}

func (v *Verifier) store(ctx context.Context, key string, result Verification) {
	ttl := v.ttl
	if remaining := result.ExpiresAt.Sub(v.codec.now()); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}

	payload, err := json.Marshal(cachedVerification{
		Subject:   result.Subject,
		IssuedAt:  result.IssuedAt.Unix(),
		ExpiresAt: result.ExpiresAt.Unix(),
	})
	if err != nil {
		return
	}

	if err := v.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		slog.Warn("verification cache write failed", "error", err)
	}
}

func (v *Verifier) cacheKey(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return cacheKeyPrefix + v.fingerprint + ":" + hex.EncodeToString(sum[:])
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Health pings the cache; always nil when no cache is configured.
func (v *Verifier) Health(ctx context.Context) error {
	if v.client == nil {
		return nil
	}
	return v.client.Ping(ctx).Err()
}
