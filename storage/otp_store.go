package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrOTPNotFound = errors.New("otp not found")

const (
	otpKeyPrefix  = "otp:"
	fieldHash     = "hash"
	fieldAttempts = "attempts"
)

// OTPEntry - сохраненный хеш кода и число неудачных попыток.
type OTPEntry struct {
	Hash     string
	Attempts int
}

type OTPStore interface {
	// Save заменяет предыдущий код для email.
	Save(ctx context.Context, email, hash string, ttl time.Duration) error
	Get(ctx context.Context, email string) (*OTPEntry, error)
	// IncrementAttempts увеличивает счетчик неудач, не продлевая TTL.
	// Для истекшего кода возвращает ErrOTPNotFound и ключ не создает.
	IncrementAttempts(ctx context.Context, email string) (int, error)
	Delete(ctx context.Context, email string) error
}

// incrementAttemptsScript не создает ключ заново, если код уже истек.
var incrementAttemptsScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
`)

type redisOTPStore struct {
	client redis.UniversalClient
}

func NewRedisOTPStore(client redis.UniversalClient) OTPStore {
	return &redisOTPStore{client: client}
}

func otpKey(email string) string {
	return otpKeyPrefix + email
}

func (s *redisOTPStore) Save(ctx context.Context, email, hash string, ttl time.Duration) error {
	key := otpKey(email)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fieldHash, hash, fieldAttempts, 0)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save otp: %w", err)
	}
	return nil
}

func (s *redisOTPStore) Get(ctx context.Context, email string) (*OTPEntry, error) {
	values, err := s.client.HGetAll(ctx, otpKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read otp: %w", err)
	}
	hash, ok := values[fieldHash]
	if !ok || hash == "" {
		return nil, ErrOTPNotFound
	}
	attempts, _ := strconv.Atoi(values[fieldAttempts])
	return &OTPEntry{Hash: hash, Attempts: attempts}, nil
}

func (s *redisOTPStore) IncrementAttempts(ctx context.Context, email string) (int, error) {
	n, err := incrementAttemptsScript.Run(ctx, s.client, []string{otpKey(email)}, fieldAttempts).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to increment otp attempts: %w", err)
	}
	if n < 0 {
		return 0, ErrOTPNotFound
	}
	return n, nil
}

func (s *redisOTPStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}
