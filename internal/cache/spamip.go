package cache

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SpamIPCache is the shared store of blocked submission addresses. It is
// written to by every server instance, so the check-then-mark step runs as
// a single Lua script instead of a read followed by a blind overwrite.
type SpamIPCache struct {
	redis *RedisClient
}

func NewSpamIPCache(r *RedisClient) *SpamIPCache {
	return &SpamIPCache{redis: r}
}

func spamIPKey(ip string) string {
	return fmt.Sprintf("spamip:%s", ip)
}

// MarkPermanent marks every already-known address permanent and returns
// the addresses that were already present. Unknown addresses are left
// untouched; they are inserted separately.
func (c *SpamIPCache) MarkPermanent(ips []string) ([]string, error) {
	if len(ips) == 0 {
		return []string{}, nil
	}

	script := `
local existing = {}
for i, key in ipairs(KEYS) do
	if redis.call('EXISTS', key) == 1 then
		redis.call('HSET', key, 'permanent', '1')
		table.insert(existing, ARGV[i])
	end
end
return existing
`

	keys := make([]string, len(ips))
	args := make([]any, len(ips))
	for i, ip := range ips {
		keys[i] = spamIPKey(ip)
		args[i] = ip
	}

	res, err := c.redis.client.Eval(c.redis.ctx, script, keys, args...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to mark blocked IPs permanent: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected result from spam IP cache: %T %v", res, res)
	}

	existing := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			existing = append(existing, s)
		}
	}
	return existing, nil
}

// InsertPermanent records an address as permanently blocked. Inserting an
// address that already exists leaves it unchanged.
func (c *SpamIPCache) InsertPermanent(ip string) error {
	key := spamIPKey(ip)

	created, err := c.redis.client.HSetNX(c.redis.ctx, key, "permanent", "1").Result()
	if err != nil {
		return fmt.Errorf("failed to insert blocked IP: %w", err)
	}
	if created {
		if err := c.redis.client.HSetNX(c.redis.ctx, key, "created_at", time.Now().UTC().Format(time.RFC3339)).Err(); err != nil {
			return fmt.Errorf("failed to stamp blocked IP: %w", err)
		}
	}
	return nil
}

// IsBlocked reports whether an address is in the cache.
func (c *SpamIPCache) IsBlocked(ip string) (bool, error) {
	n, err := c.redis.client.Exists(c.redis.ctx, spamIPKey(ip)).Result()
	if err != nil && err != redis.Nil {
		return false, fmt.Errorf("failed to check blocked IP: %w", err)
	}
	return n > 0, nil
}
