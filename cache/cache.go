package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"contract-kit/contract"
	"contract-kit/db"
	"contract-kit/log"
	"contract-kit/utils"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

// ErrMiss is returned by a Store that has no value for the key.
var ErrMiss = errors.New("cache miss")

// Store keeps compiler outputs by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore is a Store over a redigo pool.
type RedisStore struct {
	Pool   *redis.Pool
	Prefix string
}

func NewRedisStore(pool *redis.Pool) *RedisStore {
	return &RedisStore{Pool: pool, Prefix: "contract-kit:artifacts:"}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := db.RedisGet(s.Pool, s.Prefix+key)
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrMiss
	}
	return data, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return db.RedisSetBytes(s.Pool, s.Prefix+key, value, int(ttl/time.Second))
}

// Compiler memoizes a contract.Compiler. Only successful outputs are
// stored; the key covers the root sources and the optimizer flag.
type Compiler struct {
	next  contract.Compiler
	store Store
	ttl   time.Duration
}

func NewCompiler(next contract.Compiler, store Store, ttl time.Duration) *Compiler {
	return &Compiler{next: next, store: store, ttl: ttl}
}

func key(sources map[string]string, optimize bool) string {
	return utils.SourcesDigest(sources, "optimize="+strconv.FormatBool(optimize))
}

func (c *Compiler) Compile(ctx context.Context, sources map[string]string, optimize bool, imports contract.ImportFunc) (*contract.CompilerOutput, error) {
	k := key(sources, optimize)

	data, err := c.store.Get(ctx, k)
	switch {
	case err == nil:
		var out contract.CompilerOutput
		if err := json.Unmarshal(data, &out); err == nil {
			log.Logger.Debug("artifact cache hit", zap.String("key", k))
			return &out, nil
		}
		log.Logger.Warn("artifact cache entry unreadable", zap.String("key", k))
	case !errors.Is(err, ErrMiss):
		// 缓存不可用时直接编译
		log.Logger.Warn("artifact cache get", zap.String("key", k), zap.Error(err))
	}

	out, err := c.next.Compile(ctx, sources, optimize, imports)
	if err != nil || out == nil || len(out.Errors) > 0 {
		return out, err
	}
	if data, err := json.Marshal(out); err == nil {
		if err := c.store.Set(ctx, k, data, c.ttl); err != nil {
			log.Logger.Warn("artifact cache set", zap.String("key", k), zap.Error(err))
		}
	}
	return out, nil
}
