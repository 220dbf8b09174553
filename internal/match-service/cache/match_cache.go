package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/F-M-GROUP/betika-odds-platform/pkg/matchview"
)

// Chaves compartilhadas com o match-refresh-worker.
const (
	matchKeyPrefix = "match:view:"
	listKey        = "match:view:all"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

// GetMatches lê a listagem cacheada; ok=false em cache miss.
func (c *Cache) GetMatches(ctx context.Context) ([]matchview.Match, bool, error) {
	b, err := c.R.Get(ctx, listKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var matches []matchview.Match
	if err := json.Unmarshal(b, &matches); err != nil {
		return nil, false, err
	}
	return matches, true, nil
}

// SetMatches grava a listagem com TTL curto; o worker invalida em cada refresh.
func (c *Cache) SetMatches(ctx context.Context, matches []matchview.Match, ttl time.Duration) error {
	b, _ := json.Marshal(matches)
	return c.R.Set(ctx, listKey, b, ttl).Err()
}

// GetMatch lê uma partida cacheada pelo id; ok=false em cache miss.
func (c *Cache) GetMatch(ctx context.Context, matchID string) (matchview.Match, bool, error) {
	b, err := c.R.Get(ctx, matchKeyPrefix+matchID).Bytes()
	if err == redis.Nil {
		return matchview.Match{}, false, nil
	}
	if err != nil {
		return matchview.Match{}, false, err
	}
	var m matchview.Match
	if err := json.Unmarshal(b, &m); err != nil {
		return matchview.Match{}, false, err
	}
	return m, true, nil
}

// SetMatch grava uma partida pelo id.
func (c *Cache) SetMatch(ctx context.Context, m matchview.Match, ttl time.Duration) error {
	b, _ := json.Marshal(m)
	return c.R.Set(ctx, matchKeyPrefix+m.ID, b, ttl).Err()
}
