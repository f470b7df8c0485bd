package traffic

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/businessbook/directory/internal/models"
)

const (
	keyVisits    = "traffic:visits"
	keyPageViews = "traffic:page_views"
	keySearches  = "traffic:searches"
	keyVisitors  = "traffic:visitors" // HyperLogLog
)

// Redis is a Counter shared by every instance pointing at the same Redis.
// Unique visitors are estimated with a HyperLogLog.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed counter. prefix namespaces the keys.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string { return r.prefix + k }

// RecordVisit counts a visit and adds visitorID to the unique set.
func (r *Redis) RecordVisit(ctx context.Context, visitorID string) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, r.key(keyVisits))
		p.PFAdd(ctx, r.key(keyVisitors), visitorID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// RecordPageView counts a page view for visitorID.
func (r *Redis) RecordPageView(ctx context.Context, visitorID string) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, r.key(keyPageViews))
		p.PFAdd(ctx, r.key(keyVisitors), visitorID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record page view: %w", err)
	}
	return nil
}

// RecordSearch counts one search.
func (r *Redis) RecordSearch(ctx context.Context) error {
	if err := r.client.Incr(ctx, r.key(keySearches)).Err(); err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

// Stats reads every counter in one round trip. Missing keys count as zero.
func (r *Redis) Stats(ctx context.Context) (models.TrafficStats, error) {
	var (
		visits, pageViews, searches *redis.StringCmd
		unique                      *redis.IntCmd
	)
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		visits = p.Get(ctx, r.key(keyVisits))
		pageViews = p.Get(ctx, r.key(keyPageViews))
		searches = p.Get(ctx, r.key(keySearches))
		unique = p.PFCount(ctx, r.key(keyVisitors))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return models.TrafficStats{}, fmt.Errorf("read counters: %w", err)
	}

	var n [3]int64
	for i, cmd := range []*redis.StringCmd{visits, pageViews, searches} {
		if n[i], err = counterValue(cmd); err != nil {
			return models.TrafficStats{}, fmt.Errorf("read %s: %w", cmd.Args()[1], err)
		}
	}
	u, err := unique.Result()
	if err != nil {
		return models.TrafficStats{}, fmt.Errorf("count visitors: %w", err)
	}
	return aggregate(n[0], u, n[1], n[2]), nil
}

func counterValue(cmd *redis.StringCmd) (int64, error) {
	v, err := cmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}
