package middleware_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Rrens/tutor-chat/internal/repository/redis"
)

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string) (redis.Decision, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(redis.Decision), args.Error(1)
}
