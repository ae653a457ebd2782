package chainstore

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-wallet-rpc/ethrpc"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "wallet:custom_networks"

// RedisStore keeps the whole list as one JSON array under a single key, so a
// read is one GET and a write is an optimistic WATCH/MULTI transaction.
type RedisStore struct {
	rdb redis.UniversalClient
	key string
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func decodeChains(raw string) ([]ethrpc.EthereumChain, error) {
	var chains []ethrpc.EthereumChain
	if err := json.Unmarshal([]byte(raw), &chains); err != nil {
		return nil, errors.Wrap(err, "failed to decode custom networks")
	}
	for i := range chains {
		chains[i] = normalize(chains[i])
	}
	return chains, nil
}

func readChains(ctx context.Context, getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}, key string) ([]ethrpc.EthereumChain, error) {
	raw, err := getter.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", key)
	}
	return decodeChains(raw)
}

func (s *RedisStore) CustomChains(ctx context.Context) ([]ethrpc.EthereumChain, error) {
	return readChains(ctx, s.rdb, s.key)
}

func (s *RedisStore) update(ctx context.Context, mutate func([]ethrpc.EthereumChain) ([]ethrpc.EthereumChain, error)) error {
	return s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		chains, err := readChains(ctx, tx, s.key)
		if err != nil {
			return err
		}
		chains, err = mutate(chains)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(chains)
		if err != nil {
			return errors.Wrap(err, "failed to encode custom networks")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, encoded, 0)
			return nil
		})
		return err
	}, s.key)
}

func (s *RedisStore) Add(ctx context.Context, chain ethrpc.EthereumChain) error {
	if err := validate(chain); err != nil {
		return err
	}
	return s.update(ctx, func(chains []ethrpc.EthereumChain) ([]ethrpc.EthereumChain, error) {
		return upsert(chains, normalize(chain)), nil
	})
}

func (s *RedisStore) Remove(ctx context.Context, chainID string) error {
	return s.update(ctx, func(chains []ethrpc.EthereumChain) ([]ethrpc.EthereumChain, error) {
		return remove(chains, chainID)
	})
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
