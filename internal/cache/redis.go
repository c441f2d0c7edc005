package cache

import (
	"errors"
	"fmt"
	"time"
	"vigil/internal/common"

	"github.com/go-redis/redis/v7"
)

const (
	DefaultNetworkTimeout     = 5 * time.Second
	DefaultNetworkIdleTimeout = 30 * time.Second
)

// InitRedisOpts configures the InitRedis method
type InitRedisOpts struct {
	Addr        string
	Username    string
	Password    string
	ServiceLogs chan<- common.ServiceLog
}

// InitRedis initialises the singleton instance backed by a Redis server
func InitRedis(opts InitRedisOpts) error {
	serviceLogs := opts.ServiceLogs
	if serviceLogs == nil {
		serviceLogs = common.GetNoopServiceLog()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DialTimeout:  DefaultNetworkTimeout,
		ReadTimeout:  DefaultNetworkTimeout,
		WriteTimeout: DefaultNetworkTimeout,
		IdleTimeout:  DefaultNetworkIdleTimeout,
	})
	if err := client.Ping().Err(); err != nil {
		return fmt.Errorf("failed to ping redis at addr[%s]: %w", opts.Addr, err)
	}
	instance = &redisCache{
		Client:      client,
		ServiceLogs: serviceLogs,
	}
	return nil
}

type redisCache struct {
	Client      *redis.Client
	ServiceLogs chan<- common.ServiceLog
}

func (c *redisCache) Set(key string, value string, ttl time.Duration) error {
	status := c.Client.Set(key, value, ttl)
	if status.Err() != nil {
		return fmt.Errorf("failed to set key[%s]: %s", key, status.Err())
	}
	c.ServiceLogs <- common.ServiceLogf(common.LogLevelTrace, "set key[%s]", key)
	return nil
}

func (c *redisCache) Get(key string) (string, error) {
	response := c.Client.Get(key)
	if response.Err() != nil {
		if errors.Is(response.Err(), redis.Nil) {
			return "", fmt.Errorf("failed to get key[%s]: %w", key, ErrorNotFound)
		}
		return "", fmt.Errorf("failed to get key[%s]: %s", key, response.Err())
	}
	return response.Val(), nil
}

func (c *redisCache) Del(key string) error {
	response := c.Client.Unlink(key)
	if response.Err() != nil {
		return fmt.Errorf("failed to delete key[%s]: %s", key, response.Err())
	}
	c.ServiceLogs <- common.ServiceLogf(common.LogLevelTrace, "deleted key[%s]", key)
	return nil
}

func (c *redisCache) Increment(key string, ttl time.Duration) (int64, error) {
	response := c.Client.Incr(key)
	if response.Err() != nil {
		return 0, fmt.Errorf("failed to increment key[%s]: %s", key, response.Err())
	}
	count := response.Val()
	if count == 1 {
		if err := c.Client.Expire(key, ttl).Err(); err != nil {
			return count, fmt.Errorf("failed to set ttl on key[%s]: %s", key, err)
		}
	}
	return count, nil
}
