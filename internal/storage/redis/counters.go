// redis реализует storage.Counters на двух хешах Redis:
// <prefix>paths (path -> просмотры) и <prefix>days (YYYY-MM-DD -> просмотры).
package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/storage"
)

const defaultPrefix = "analytics:"

// Counters счётчики просмотров в Redis.
type Counters struct {
	rdb    *redis.Client
	prefix string
}

// New connects using a URL such as redis://:pass@host:6379/0 and pings the server.
// Пустой prefix означает "analytics:".
func New(ctx context.Context, redisURL, prefix string) (*Counters, error) {
	const op = "storage.redis.New"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithClient(rdb, prefix), nil
}

// NewWithClient оборачивает готовый клиент, удобно для miniredis в тестах.
func NewWithClient(rdb *redis.Client, prefix string) *Counters {
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &Counters{rdb: rdb, prefix: prefix}
}

func (c *Counters) pathsKey() string { return c.prefix + "paths" }
func (c *Counters) daysKey() string  { return c.prefix + "days" }

// IncrView увеличивает оба счётчика в одной транзакции.
func (c *Counters) IncrView(ctx context.Context, path, day string) error {
	const op = "storage.redis.IncrView"

	pipe := c.rdb.TxPipeline()
	pipe.HIncrBy(ctx, c.pathsKey(), path, 1)
	pipe.HIncrBy(ctx, c.daysKey(), day, 1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Counters) ViewStats(ctx context.Context) (*models.ViewStats, error) {
	const op = "storage.redis.ViewStats"

	pipe := c.rdb.Pipeline()
	pathsCmd := pipe.HGetAll(ctx, c.pathsKey())
	daysCmd := pipe.HGetAll(ctx, c.daysKey())

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	paths, err := toCounts(pathsCmd.Val())
	if err != nil {
		return nil, fmt.Errorf("%s: paths: %w", op, err)
	}

	days, err := toCounts(daysCmd.Val())
	if err != nil {
		return nil, fmt.Errorf("%s: days: %w", op, err)
	}

	return &models.ViewStats{Paths: paths, Days: days}, nil
}

func (c *Counters) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

func (c *Counters) Close() error { return c.rdb.Close() }

func toCounts(m map[string]string) (map[string]int64, error) {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		out[k] = n
	}

	return out, nil
}

var _ storage.Counters = (*Counters)(nil)
