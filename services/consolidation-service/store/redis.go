package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
)

const (
	estimateKeyPrefix = "vaultship:estimate:"
	itemKeyPrefix     = "vaultship:estimate-item:"
)

// RedisStore keeps estimates as JSON records with a TTL, so an abandoned
// checkout does not hold an estimate forever.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisStore connects and pings. ttl <= 0 means records never expire.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, estimate models.ShipmentEstimate) error {
	if sessionID == "" {
		return ErrNoSession
	}
	raw, err := json.Marshal(estimate.ToRecord())
	if err != nil {
		return fmt.Errorf("marshal estimate: %w", err)
	}

	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, estimateKeyPrefix+sessionID, raw, ttl)
		for _, itemID := range estimate.SelectedItemIDs {
			key := itemKeyPrefix + itemID
			pipe.SAdd(ctx, key, sessionID)
			if ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save estimate: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (models.ShipmentEstimate, bool, error) {
	raw, err := s.rdb.Get(ctx, estimateKeyPrefix+sessionID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return models.ShipmentEstimate{}, false, nil
	}
	if err != nil {
		return models.ShipmentEstimate{}, false, fmt.Errorf("redis load estimate: %w", err)
	}
	var rec models.EstimateRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.ShipmentEstimate{}, false, fmt.Errorf("decode estimate record: %w", err)
	}
	return rec.FromRecord(), true, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, estimateKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis clear estimate: %w", err)
	}
	return nil
}

// Sessions reads the per-item index written by Save. Entries for cleared
// estimates linger until their TTL.
func (s *RedisStore) Sessions(ctx context.Context, itemID string) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, itemKeyPrefix+itemID).Result()
	if err != nil {
		return nil, fmt.Errorf("redis item index: %w", err)
	}
	return ids, nil
}
