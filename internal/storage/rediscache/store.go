package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eventstock/eventstock/internal/core/query"
	"github.com/eventstock/eventstock/internal/metrics"
	"github.com/eventstock/eventstock/internal/storage"
)

const defaultTTL = 10 * time.Minute

// Store caches whole collections of another Store in Redis. Reads go
// through the cache; writes go to the backing store first and then refresh
// the cached copy. Cache errors never fail a request.
type Store struct {
	next   storage.Store
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func New(next storage.Store, client *redis.Client, prefix string, ttl time.Duration) *Store {
	if ttl == 0 {
		ttl = defaultTTL
	}
	return &Store{next: next, client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) key(name string) string {
	if s.prefix != "" {
		return fmt.Sprintf("%s:collection:%s", s.prefix, name)
	}
	return "collection:" + name
}

func (s *Store) Load(ctx context.Context, name string) ([]query.Record, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	switch {
	case err == nil:
		var records []query.Record
		if err := json.Unmarshal(data, &records); err == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return records, nil
		}
		zap.L().Warn("discarding undecodable cached collection", zap.String("collection", name))
		metrics.CacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		zap.L().Warn("redis get failed", zap.String("collection", name), zap.Error(err))
		metrics.CacheLookups.WithLabelValues("error").Inc()
	}

	records, err := s.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	s.put(ctx, name, records)
	return records, nil
}

func (s *Store) Save(ctx context.Context, name string, records []query.Record) error {
	if err := s.next.Save(ctx, name, records); err != nil {
		s.Invalidate(ctx, name)
		return err
	}
	s.put(ctx, name, records)
	return nil
}

// Invalidate drops the cached copy so the next Load reads the backing store.
func (s *Store) Invalidate(ctx context.Context, name string) {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		zap.L().Warn("redis del failed", zap.String("collection", name), zap.Error(err))
	}
}

func (s *Store) put(ctx context.Context, name string, records []query.Record) {
	if records == nil {
		records = []query.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, s.key(name), data, s.ttl).Err(); err != nil {
		zap.L().Warn("redis set failed", zap.String("collection", name), zap.Error(err))
	}
}
