package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizdeck/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisTokenStore_Save(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisTokenStore(db)
	ctx := context.Background()

	mock.ExpectSet("pwreset:user1", "tok123", time.Hour).SetVal("OK")
	err := store.Save(ctx, "user1", "tok123", time.Hour)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTokenStore_Consume(t *testing.T) {
	ctx := context.Background()

	t.Run("matching token is consumed", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisTokenStore(db)

		mock.ExpectGetDel("pwreset:user1").SetVal("tok123")
		err := store.Consume(ctx, "user1", "tok123")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing or expired token", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisTokenStore(db)

		mock.ExpectGetDel("pwreset:user1").SetErr(redis.Nil)
		err := store.Consume(ctx, "user1", "tok123")
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	})

	t.Run("mismatched token still deletes and rejects", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisTokenStore(db)

		mock.ExpectGetDel("pwreset:user1").SetVal("different-token")
		err := store.Consume(ctx, "user1", "tok123")
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error passes through", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisTokenStore(db)

		redisErr := errors.New("connection refused")
		mock.ExpectGetDel("pwreset:user1").SetErr(redisErr)
		err := store.Consume(ctx, "user1", "tok123")
		assert.ErrorIs(t, err, redisErr)
	})
}

func TestRedisTokenStore_Ping(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisTokenStore(db)

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, store.Ping(context.Background()))
}
