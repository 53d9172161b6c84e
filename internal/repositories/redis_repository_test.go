package repository_test

import (
	"testing"
	"time"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/config"
	repository "github.com/aaravmahajanofficial/shared-cart-service/internal/repositories"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRateLimitTest(t *testing.T, maxAttempts int64) (repository.RateLimitRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{
		RateConfig: config.RateConfig{MaxAttempts: maxAttempts, WindowSize: time.Minute},
	}

	return repository.NewRateLimitRepo(client, cfg), mr
}

func TestCheckInviteRateLimit(t *testing.T) {
	t.Run("Success - Within Limit", func(t *testing.T) {
		// Arrange
		repo, _ := setupRateLimitTest(t, 3)

		// Act
		allowed, remaining, retryAfter, err := repo.CheckInviteRateLimit(t.Context(), 7, 42)

		// Assert
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 2, remaining)
		assert.Zero(t, retryAfter)
	})

	t.Run("Failure - Limit Exceeded", func(t *testing.T) {
		// Arrange
		repo, _ := setupRateLimitTest(t, 2)

		for range 2 {
			allowed, _, _, err := repo.CheckInviteRateLimit(t.Context(), 7, 42)
			require.NoError(t, err)
			require.True(t, allowed)
		}

		// Act
		allowed, remaining, retryAfter, err := repo.CheckInviteRateLimit(t.Context(), 7, 42)

		// Assert
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Zero(t, remaining)
		assert.Positive(t, retryAfter)
		assert.LessOrEqual(t, retryAfter, 60)
	})

	t.Run("Success - Separate Carts Counted Separately", func(t *testing.T) {
		// Arrange
		repo, _ := setupRateLimitTest(t, 1)

		allowed, _, _, err := repo.CheckInviteRateLimit(t.Context(), 7, 42)
		require.NoError(t, err)
		require.True(t, allowed)

		// Act
		allowed, _, _, err = repo.CheckInviteRateLimit(t.Context(), 7, 43)

		// Assert
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Failure - Redis Down", func(t *testing.T) {
		// Arrange
		repo, mr := setupRateLimitTest(t, 3)
		mr.Close()

		// Act
		allowed, _, _, err := repo.CheckInviteRateLimit(t.Context(), 7, 42)

		// Assert
		require.Error(t, err)
		assert.False(t, allowed)
	})
}

func TestNewRedisClient(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mr := miniredis.RunT(t)

		cfg := &config.Config{RedisConnect: config.RedisConnect{Host: mr.Host(), Port: mr.Port()}}

		client, err := repository.NewRedisClient(t.Context(), cfg)

		require.NoError(t, err)
		require.NotNil(t, client)
		assert.NoError(t, client.Close())
	})

	t.Run("Failure - Unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{RedisConnect: config.RedisConnect{Host: mr.Host(), Port: mr.Port()}}
		mr.Close()

		client, err := repository.NewRedisClient(t.Context(), cfg)

		require.Error(t, err)
		assert.Nil(t, client)
	})
}
