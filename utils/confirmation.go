package utils

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ConfirmationGate implements a two-step confirmation: Issue hands out a
// short-lived single-use code for a subject, Redeem consumes it.
type ConfirmationGate interface {
	Issue(ctx context.Context, subject string) (string, error)
	Redeem(ctx context.Context, subject, code string) (bool, error)
}

// generateSecureCode returns a random base32 string of the given length.
func generateSecureCode(length int) (string, error) {
	numBytes := (length*5 + 7) / 8
	randomBytes := make([]byte, numBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	code := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	if len(code) > length {
		code = code[:length]
	}
	return code, nil
}

const confirmationCodeLength = 16

func confirmationKey(subject string) string {
	return "confirm:" + subject
}

// RedisConfirmationGate keeps codes in Redis so any instance can redeem them.
type RedisConfirmationGate struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisConfirmationGate(client *redis.Client, ttl time.Duration) *RedisConfirmationGate {
	return &RedisConfirmationGate{client: client, ttl: ttl}
}

func (g *RedisConfirmationGate) Issue(ctx context.Context, subject string) (string, error) {
	code, err := generateSecureCode(confirmationCodeLength)
	if err != nil {
		return "", err
	}
	if err := g.client.Set(ctx, confirmationKey(subject), code, g.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store confirmation code: %w", err)
	}
	return code, nil
}

func (g *RedisConfirmationGate) Redeem(ctx context.Context, subject, code string) (bool, error) {
	stored, err := g.client.GetDel(ctx, confirmationKey(subject)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation code: %w", err)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1, nil
}

// MemoryConfirmationGate is the single-instance variant.
type MemoryConfirmationGate struct {
	codes *expirable.LRU[string, string]
}

func NewMemoryConfirmationGate(size int, ttl time.Duration) *MemoryConfirmationGate {
	return &MemoryConfirmationGate{codes: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (g *MemoryConfirmationGate) Issue(_ context.Context, subject string) (string, error) {
	code, err := generateSecureCode(confirmationCodeLength)
	if err != nil {
		return "", err
	}
	g.codes.Add(confirmationKey(subject), code)
	return code, nil
}

func (g *MemoryConfirmationGate) Redeem(_ context.Context, subject, code string) (bool, error) {
	key := confirmationKey(subject)
	stored, ok := g.codes.Get(key)
	if !ok {
		return false, nil
	}
	g.codes.Remove(key)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1, nil
}
