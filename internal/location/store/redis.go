package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"crmdir/internal/location/models"
	"crmdir/pkg/platform/sentinel"
)

const redisKeyPrefix = "crmdir:locations"

// Redis keeps each (level, parent) group as a hash of id -> JSON document.
type Redis struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

func childrenKey(level models.Level, parentID string) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, level, parentID)
}

func (s *Redis) ChildrenOf(ctx context.Context, level models.Level, parentID string) ([]models.Entity, error) {
	values, err := s.client.HGetAll(ctx, childrenKey(level, parentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis children of %s/%q: %w", level, parentID, err)
	}
	out := make([]models.Entity, 0, len(values))
	for _, raw := range values {
		var e models.Entity
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode location document: %w: %w", sentinel.ErrInvalidState, err)
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Redis) Upsert(ctx context.Context, level models.Level, entities ...models.Entity) error {
	pipe := s.client.TxPipeline()
	for _, e := range entities {
		doc, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode location document: %w", err)
		}
		pipe.HSet(ctx, childrenKey(level, e.ParentID), e.ID, doc)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis upsert locations: %w", err)
	}
	return nil
}
