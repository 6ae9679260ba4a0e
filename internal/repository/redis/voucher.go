// Package redis caches remote voucher reads in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/repository"
)

const keyPrefix = "voucher:"

var cacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_voucher_cache_requests_total",
		Help: "Voucher cache lookups by result.",
	},
	[]string{"result"},
)

// VoucherCache is a read-through cache in front of a repository.VoucherStore.
// Redis failures are logged and the lookup falls through to the store.
type VoucherCache struct {
	client *redis.Client
	next   repository.VoucherStore
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewVoucherCache wraps next with a cache whose entries live for ttl.
func NewVoucherCache(client *redis.Client, next repository.VoucherStore, ttl time.Duration, logger *slog.Logger) *VoucherCache {
	return &VoucherCache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger,
	}
}

// List returns a seller's vouchers with the given status.
func (c *VoucherCache) List(ctx context.Context, sellerID, status string) ([]domain.Voucher, error) {
	key := keyPrefix + "list:" + sellerID + ":" + status

	var vouchers []domain.Voucher
	if c.lookup(ctx, key, &vouchers) {
		return vouchers, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Shared by every waiter on key, so one caller leaving must not cancel it.
		ctx := context.WithoutCancel(ctx)
		vouchers, err := c.next.List(ctx, sellerID, status)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, vouchers)
		return vouchers, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Voucher), nil
}

// GetByCode looks up a voucher by code. Misses are not cached.
func (c *VoucherCache) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	key := keyPrefix + "code:" + strings.ToUpper(strings.TrimSpace(code))

	var voucher domain.Voucher
	if c.lookup(ctx, key, &voucher) {
		return &voucher, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		voucher, err := c.next.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, voucher)
		return voucher, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Voucher), nil
}

func (c *VoucherCache) lookup(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cacheRequests.WithLabelValues("miss").Inc()
		} else {
			cacheRequests.WithLabelValues("error").Inc()
			c.logger.WarnContext(ctx, "voucher cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		cacheRequests.WithLabelValues("error").Inc()
		c.logger.WarnContext(ctx, "voucher cache entry corrupt",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}

	cacheRequests.WithLabelValues("hit").Inc()
	return true
}

func (c *VoucherCache) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "marshal voucher cache entry", slog.String("error", err.Error()))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "voucher cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
