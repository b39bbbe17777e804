package affinitystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"fleet-assignment-service/internal/domain"
)

// DefaultRedisKey is the hash the affinity snapshot lives under.
const DefaultRedisKey = "fleet:driver_vehicle_affinity"

// Redis is a Redis-backed AffinityStore: one hash, one field per affinity
// key, each field holding the JSON-encoded entry list.
type Redis struct {
	Client *redis.Client
	Key    string
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{Client: client, Key: DefaultRedisKey}
}

func (s *Redis) Load(ctx context.Context) (map[string][]domain.AffinityEntry, error) {
	if s.Client == nil {
		return nil, errors.New("affinity store: redis client is nil")
	}

	fields, err := s.Client.HGetAll(ctx, s.Key).Result()
	if err != nil {
		return nil, fmt.Errorf("load affinities: hgetall %s: %w", s.Key, err)
	}

	affinities := make(map[string][]domain.AffinityEntry, len(fields))
	for key, raw := range fields {
		var entries []domain.AffinityEntry
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return nil, fmt.Errorf("load affinities: decode field %q: %w", key, err)
		}
		affinities[key] = entries
	}
	return affinities, nil
}

func (s *Redis) Save(ctx context.Context, affinities map[string][]domain.AffinityEntry) error {
	if s.Client == nil {
		return errors.New("affinity store: redis client is nil")
	}

	// Replace the whole hash atomically so removed keys do not linger.
	pipe := s.Client.TxPipeline()
	pipe.Del(ctx, s.Key)
	for key, entries := range affinities {
		raw, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("save affinities: encode field %q: %w", key, err)
		}
		pipe.HSet(ctx, s.Key, key, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save affinities: pipeline exec: %w", err)
	}
	return nil
}
