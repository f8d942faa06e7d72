package data

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/conf"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/cache"
)

// NewStore 按配置创建键值存储后端
func NewStore(c *conf.Config, logger log.Logger) (cache.Store, func(), error) {
	helper := log.NewHelper(log.With(logger, "module", "data/store"))
	opts := &cache.Options{KeyPrefix: c.Storage.KeyPrefix}

	var store cache.Store
	switch c.Storage.Driver {
	case "redis":
		redisStore, err := cache.NewRedisStore(&cache.RedisConfig{
			Addr:         c.Redis.Addr,
			Password:     c.Redis.Password,
			DB:           c.Redis.DB,
			PoolSize:     c.Redis.PoolSize,
			DialTimeout:  c.Redis.DialTimeout,
			ReadTimeout:  c.Redis.ReadTimeout,
			WriteTimeout: c.Redis.WriteTimeout,
		}, opts)
		if err != nil {
			return nil, nil, err
		}
		store = redisStore
	case "postgres":
		db, err := NewDB(&c.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		store = NewPostgresStore(db, opts)
	case "memory", "":
		helper.Warn("using in-memory store, data will be lost on restart")
		store = cache.NewMemoryStore(opts)
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}

	helper.Infof("key-value store ready: driver=%s prefix=%s", c.Storage.Driver, c.Storage.KeyPrefix)

	instrumented := cache.NewInstrumentedStore(store, c.Storage.Driver)
	cleanup := func() {
		if err := instrumented.Close(); err != nil {
			helper.Errorf("close store: %v", err)
		}
	}
	return instrumented, cleanup, nil
}
