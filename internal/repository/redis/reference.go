package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/tutor-chat/internal/domain"
)

const (
	referenceKey = "tutor:reference_document"
	referenceTTL = 10 * time.Minute
)

// ReferenceCachedStore serves the reference document from Redis, falling
// back to the wrapped store on a miss. Cache failures never fail a request.
type ReferenceCachedStore struct {
	domain.TranscriptStore
	client *Client
	key    string
	ttl    time.Duration
}

// NewReferenceCachedStore wraps store with a reference document cache
func NewReferenceCachedStore(store domain.TranscriptStore, client *Client) *ReferenceCachedStore {
	return &ReferenceCachedStore{TranscriptStore: store, client: client, key: referenceKey, ttl: referenceTTL}
}

func (s *ReferenceCachedStore) GetReferenceDocument(ctx context.Context) (string, error) {
	content, err := s.client.rdb.Get(ctx, s.key).Result()
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Msg("reference cache read failed")
	}

	content, err = s.TranscriptStore.GetReferenceDocument(ctx)
	if err != nil {
		return "", err
	}

	if err := s.client.rdb.Set(ctx, s.key, content, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("reference cache write failed")
	}
	return content, nil
}

func (s *ReferenceCachedStore) SaveReferenceDocument(ctx context.Context, content string) error {
	if err := s.TranscriptStore.SaveReferenceDocument(ctx, content); err != nil {
		return err
	}
	if err := s.client.rdb.Del(ctx, s.key).Err(); err != nil {
		log.Warn().Err(err).Msg("reference cache invalidation failed")
	}
	return nil
}
