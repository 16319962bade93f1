package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateContract(t *testing.T, gate ConfirmationGate) {
	ctx := context.Background()

	code, err := gate.Issue(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, code, confirmationCodeLength)

	ok, err := gate.Redeem(ctx, "a2", code)
	require.NoError(t, err)
	assert.False(t, ok, "code is bound to its subject")

	ok, err = gate.Redeem(ctx, "a1", "WRONG")
	require.NoError(t, err)
	assert.False(t, ok)

	// a wrong guess consumes the code
	ok, err = gate.Redeem(ctx, "a1", code)
	require.NoError(t, err)
	assert.False(t, ok)

	code, err = gate.Issue(ctx, "a1")
	require.NoError(t, err)
	ok, err = gate.Redeem(ctx, "a1", code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.Redeem(ctx, "a1", code)
	require.NoError(t, err)
	assert.False(t, ok, "codes are single use")
}

func TestMemoryConfirmationGate(t *testing.T) {
	gateContract(t, NewMemoryConfirmationGate(8, time.Minute))
}

func TestRedisConfirmationGate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	gateContract(t, NewRedisConfirmationGate(client, time.Minute))
}

func TestRedisConfirmationGateExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	gate := NewRedisConfirmationGate(client, time.Minute)
	ctx := context.Background()

	code, err := gate.Issue(ctx, "a1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	ok, err := gate.Redeem(ctx, "a1", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerateSecureCodeIsRandom(t *testing.T) {
	a, err := generateSecureCode(16)
	require.NoError(t, err)
	b, err := generateSecureCode(16)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
