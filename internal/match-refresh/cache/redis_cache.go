package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/F-M-GROUP/betika-odds-platform/pkg/matchview"
)

// Chaves compartilhadas com o match-service.
const (
	matchKeyPrefix = "match:view:"
	listKey        = "match:view:all"
)

// RedisCache grava a visão derivada de partida no Redis.
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// SetMatch armazena a visão de uma partida e invalida a listagem cacheada:
// a próxima leitura da lista recalcula a partir do banco.
func (r *RedisCache) SetMatch(ctx context.Context, m matchview.Match) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := r.Client.Set(ctx, matchKeyPrefix+m.ID, b, r.TTL).Err(); err != nil {
		return err
	}
	return r.Client.Del(ctx, listKey).Err()
}
