package conversation

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	domain "github.com/janhq/support-chat-api/internal/domain/conversation"
)

// CachedRepository remembers conversation ids known to exist so the ingestion
// path skips the existence query for active conversations. Conversations are
// never deleted, so a cached id can not go stale. Concurrent misses for the
// same id share one lookup.
type CachedRepository struct {
	domain.Repository
	known  *lru.Cache
	lookup singleflight.Group
}

var _ domain.Repository = (*CachedRepository)(nil)

// NewCachedRepository wraps repo with an LRU of size entries. A non-positive size disables caching.
func NewCachedRepository(repo domain.Repository, size int, log zerolog.Logger) domain.Repository {
	if size <= 0 {
		return repo
	}
	cache, err := lru.New(size)
	if err != nil {
		log.Warn().Err(err).Int("size", size).Msg("conversation cache disabled")
		return repo
	}
	return &CachedRepository{Repository: repo, known: cache}
}

func (r *CachedRepository) CreateConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	conv, err := r.Repository.CreateConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	r.known.Add(conv.ID, struct{}{})
	return conv, nil
}

func (r *CachedRepository) ConversationExists(ctx context.Context, id string) (bool, error) {
	if r.known.Contains(id) {
		return true, nil
	}
	v, err, _ := r.lookup.Do(id, func() (any, error) {
		exists, err := r.Repository.ConversationExists(ctx, id)
		if err != nil {
			return false, err
		}
		if exists {
			r.known.Add(id, struct{}{})
		}
		return exists, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (r *CachedRepository) FindConversationByID(ctx context.Context, id string) (*domain.Conversation, error) {
	conv, err := r.Repository.FindConversationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.known.Add(conv.ID, struct{}{})
	return conv, nil
}
