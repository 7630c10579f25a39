package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOTPStore(t *testing.T) (OTPStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisOTPStore(client), mr
}

func TestOTPStoreSaveAndGet(t *testing.T) {
	store, mr := newTestOTPStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a@b.com", "hash-1", 15*time.Minute))
	entry, err := store.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, &OTPEntry{Hash: "hash-1", Attempts: 0}, entry)
	assert.Equal(t, 15*time.Minute, mr.TTL("otp:a@b.com"))

	// новый код сбрасывает счетчик попыток
	_, err = store.IncrementAttempts(ctx, "a@b.com")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "a@b.com", "hash-2", 15*time.Minute))
	entry, err = store.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, &OTPEntry{Hash: "hash-2", Attempts: 0}, entry)
}

func TestOTPStoreGetMissing(t *testing.T) {
	store, _ := newTestOTPStore(t)

	_, err := store.Get(context.Background(), "nobody@b.com")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestOTPStoreIncrementAttemptsKeepsTTL(t *testing.T) {
	store, mr := newTestOTPStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "a@b.com", "hash", 10*time.Minute))
	mr.FastForward(4 * time.Minute)

	n, err := store.IncrementAttempts(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = store.IncrementAttempts(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 6*time.Minute, mr.TTL("otp:a@b.com"))
}

func TestOTPStoreIncrementAttemptsAfterExpiry(t *testing.T) {
	store, mr := newTestOTPStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "a@b.com", "hash", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.IncrementAttempts(ctx, "a@b.com")
	assert.ErrorIs(t, err, ErrOTPNotFound)
	assert.False(t, mr.Exists("otp:a@b.com"), "истекший ключ не должен появиться без TTL")
}

func TestOTPStoreDelete(t *testing.T) {
	store, mr := newTestOTPStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "a@b.com", "hash", time.Minute))

	require.NoError(t, store.Delete(ctx, "a@b.com"))
	assert.False(t, mr.Exists("otp:a@b.com"))
	assert.NoError(t, store.Delete(ctx, "a@b.com"))
}
