package redis

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Rrens/tutor-chat/internal/domain"
)

// MockReferenceStore mocks the reference slot of a transcript store. Other
// methods are not used by the cache and panic through the nil embed.
type MockReferenceStore struct {
	domain.TranscriptStore
	mock.Mock
}

func (m *MockReferenceStore) GetReferenceDocument(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockReferenceStore) SaveReferenceDocument(ctx context.Context, content string) error {
	args := m.Called(ctx, content)
	return args.Error(0)
}
