package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Mathoholic/exchange-updater/internal/clients/xrates"
	"github.com/Mathoholic/exchange-updater/internal/logger"
)

const (
	keyPrefix  = "xrates:"
	dateLayout = "2006-01-02"
)

type config interface {
	Hosts() []string
}

type itemStore interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
}

type tableFetcher interface {
	Fetch(ctx context.Context, base string, date time.Time) (xrates.Table, error)
}

func NewMemcache(config config) (*memcache.Client, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	return mc, mc.Ping()
}

// RatesCache is a read-through cache of fetched rate tables. Only past dates are
// cached: the table for the current day may still change.
type RatesCache struct {
	client     itemStore
	next       tableFetcher
	expiration int32
	clock      func() time.Time
}

func NewRatesCache(client itemStore, next tableFetcher, expiration time.Duration) *RatesCache {
	return &RatesCache{
		client:     client,
		next:       next,
		expiration: int32(expiration / time.Second),
		clock:      time.Now,
	}
}

func formatKey(base string, date time.Time) string {
	return keyPrefix + base + ":" + date.Format(dateLayout)
}

func (c *RatesCache) Fetch(ctx context.Context, base string, date time.Time) (xrates.Table, error) {
	key := formatKey(base, date)
	cacheable := date.Format(dateLayout) < c.clock().Format(dateLayout)

	if cacheable {
		if table, ok := c.lookup(key); ok {
			return table, nil
		}
	}

	table, err := c.next.Fetch(ctx, base, date)
	if err != nil {
		return nil, err
	}

	if cacheable && len(table) > 0 {
		c.store(key, table)
	}
	return table, nil
}

func (c *RatesCache) lookup(key string) (xrates.Table, bool) {
	item, err := c.client.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			logger.Error("get rates from cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var table xrates.Table
	if err = json.Unmarshal(item.Value, &table); err != nil {
		logger.Error("decode cached rates", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	logger.Debug("rates served from cache", zap.String("key", key))
	return table, true
}

func (c *RatesCache) store(key string, table xrates.Table) {
	raw, err := json.Marshal(table)
	if err != nil {
		logger.Error("encode rates for cache", zap.String("key", key), zap.Error(err))
		return
	}
	err = c.client.Set(&memcache.Item{
		Key:        key,
		Value:      raw,
		Expiration: c.expiration,
	})
	if err != nil {
		logger.Error("cache rates", zap.String("key", key), zap.Error(err))
	}
}
