package db

import (
	"fmt"
	"time"

	"contract-kit/config"
	"contract-kit/log"

	"github.com/gomodule/redigo/redis"
)

var RedisConn *redis.Pool

// NewRedisPool 建立连接池，不做连通性检查
func NewRedisPool(conf config.RedisConfig) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     conf.MaxIdle,
		MaxActive:   conf.MaxActive, // 0 表示不限制
		Wait:        true,           // 连接数不足时阻塞等待
		IdleTimeout: time.Duration(conf.IdleTimeout) * time.Second,
		Dial: func() (redis.Conn, error) {
			c, err := redis.Dial("tcp", fmt.Sprintf("%s:%s", conf.Address, conf.Port))
			if err != nil {
				return nil, err
			}
			if conf.Password != "" {
				if _, err := c.Do("auth", conf.Password); err != nil {
					_ = c.Close()
					return nil, fmt.Errorf("redis auth: %w", err)
				}
			}
			if _, err := c.Do("select", conf.Db); err != nil {
				_ = c.Close()
				return nil, fmt.Errorf("redis select db: %w", err)
			}
			return c, nil
		},
	}
}

// InitRedis 初始化Redis
func InitRedis(conf config.RedisConfig) (*redis.Pool, error) {
	log.Logger.Info("Init Redis")
	pool := NewRedisPool(conf)
	// 获取一个连接测试一下，确保配置没写错
	conn := pool.Get()
	defer func() {
		_ = conn.Close()
	}()
	if _, err := conn.Do("ping"); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("redis init: %w", err)
	}
	RedisConn = pool
	return pool, nil
}

// RedisSetBytes 设置 key、value，aliveSeconds > 0 时带过期时间
func RedisSetBytes(pool *redis.Pool, key string, data []byte, aliveSeconds int) error {
	conn := pool.Get()
	defer func() {
		_ = conn.Close()
	}()
	var err error
	if aliveSeconds > 0 {
		_, err = conn.Do("set", key, data, "EX", aliveSeconds)
	} else {
		_, err = conn.Do("set", key, data)
	}
	return err
}

// RedisGet 获取Key 对应的原始字节数据，key 不存在时返回 redis.ErrNil
func RedisGet(pool *redis.Pool, key string) ([]byte, error) {
	conn := pool.Get()
	defer func() {
		_ = conn.Close()
	}()
	return redis.Bytes(conn.Do("get", key))
}

// RedisDelete 删除Key
func RedisDelete(pool *redis.Pool, key string) (bool, error) {
	conn := pool.Get()
	defer func() {
		_ = conn.Close()
	}()
	return redis.Bool(conn.Do("del", key))
}
