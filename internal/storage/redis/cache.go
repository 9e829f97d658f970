package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const campaignListKey = "campaigns:list"

type Cache struct {
	*redis.Client
	ttl time.Duration
}

func NewCache(redisURL string, ttl time.Duration) *Cache {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{
			Addr: redisURL,
		}
	}

	return &Cache{
		Client: redis.NewClient(opt),
		ttl:    ttl,
	}
}

func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.Set(ctx, key, data, expiration).Err()
}

func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.Get(ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), dest)
}

func (c *Cache) CacheCampaignList(ctx context.Context, views interface{}) error {
	return c.SetJSON(ctx, campaignListKey, views, c.ttl)
}

func (c *Cache) GetCachedCampaignList(ctx context.Context, dest interface{}) error {
	return c.GetJSON(ctx, campaignListKey, dest)
}

// InvalidateCampaignList drops the shared list cache. Called whenever a new
// incident changes campaign aggregates.
func (c *Cache) InvalidateCampaignList(ctx context.Context) error {
	return c.Del(ctx, campaignListKey).Err()
}
