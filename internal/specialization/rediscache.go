package specialization

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisLookupCache is the optional read-through LookupCache in front of the
// Store's Get path (SPEC_FULL domain stack): when several assistant-host
// processes share one backing store, it saves repeat processes from
// re-deriving a dispatch candidate's record from the gateway. It is
// advisory only — every method fails open, logging and falling back to the
// in-memory map rather than ever surfacing a cache error to the caller.
type RedisLookupCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    *logrus.Logger
}

// NewRedisLookupCache constructs a cache using client, keying entries under
// prefix+agentID with the given ttl.
func NewRedisLookupCache(client *redis.Client, prefix string, ttl time.Duration, log *logrus.Logger) *RedisLookupCache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RedisLookupCache{client: client, ttl: ttl, prefix: prefix, log: log}
}

func (c *RedisLookupCache) key(agentID string) string {
	return c.prefix + agentID
}

func (c *RedisLookupCache) Get(ctx context.Context, agentID string) (*Specialization, bool) {
	raw, err := c.client.Get(ctx, c.key(agentID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Debug("specialization: redis cache get failed, falling back to in-memory store")
		}
		return nil, false
	}

	var pr persistedRecord
	if err := json.Unmarshal(raw, &pr); err != nil {
		c.log.WithError(err).Warn("specialization: malformed cache entry, falling back to in-memory store")
		return nil, false
	}
	performance := pr.PerformanceByTask
	if performance == nil {
		performance = make(map[string]TaskPerformanceMetrics)
	}
	return &Specialization{
		AgentID:           pr.AgentID,
		RoleID:            pr.RoleID,
		AssignedAt:        pr.AssignedAt,
		PerformanceByTask: performance,
		Customizations:    pr.Customizations,
	}, true
}

func (c *RedisLookupCache) Set(ctx context.Context, spec *Specialization) {
	raw, err := json.Marshal(persistedRecord{
		AgentID:           spec.AgentID,
		RoleID:            spec.RoleID,
		AssignedAt:        spec.AssignedAt,
		PerformanceByTask: spec.PerformanceByTask,
		Customizations:    spec.Customizations,
	})
	if err != nil {
		c.log.WithError(err).Warn("specialization: failed to marshal record for cache, skipping")
		return
	}
	if err := c.client.Set(ctx, c.key(spec.AgentID), raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Debug("specialization: redis cache set failed, continuing without cache")
	}
}

func (c *RedisLookupCache) Delete(ctx context.Context, agentID string) {
	if err := c.client.Del(ctx, c.key(agentID)).Err(); err != nil {
		c.log.WithError(err).Debug("specialization: redis cache delete failed, continuing without cache")
	}
}
