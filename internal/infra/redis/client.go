package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/paramretry/internal/core/domain"
)

// Client tracks flaky tuples in Redis sorted sets, one per test method.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key helpers
func flakyKey(method string) string {
	return fmt.Sprintf("flaky_tuples:%s", method)
}

func lastSeenKey(method string) string {
	return fmt.Sprintf("flaky_last_seen:%s", method)
}

// FlakyTuple is a tuple that passed only after retrying, with the number of
// runs in which that happened.
type FlakyTuple struct {
	Index int
	Name  string
	Count int64
}

// RecordFlaky increments the flaky counter of every tuple in the report that
// passed after at least one retry.
func (c *Client) RecordFlaky(ctx context.Context, report *domain.RunReport) error {
	pipe := c.rdb.TxPipeline()
	n := 0
	for _, t := range report.Summary.Tuples {
		if !t.Flaky() {
			continue
		}
		member := FormatMember(t.Index, t.Name)
		pipe.ZIncrBy(ctx, flakyKey(report.Method), 1, member)
		pipe.HSet(ctx, lastSeenKey(report.Method), member, report.FinishedAt.Unix())
		n++
	}
	if n == 0 {
		return nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record flaky tuples: %w", err)
	}
	return nil
}

// TopFlaky returns the most frequently flaky tuples of a method.
func (c *Client) TopFlaky(ctx context.Context, method string, limit int64) ([]FlakyTuple, error) {
	results, err := c.rdb.ZRevRangeWithScores(ctx, flakyKey(method), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange failed: %w", err)
	}

	out := make([]FlakyTuple, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		index, name, err := ParseMember(member)
		if err != nil {
			return nil, fmt.Errorf("invalid member format: %w", err)
		}
		out = append(out, FlakyTuple{Index: index, Name: name, Count: int64(z.Score)})
	}
	return out, nil
}

// ClearFlaky removes all flaky tracking for a method.
func (c *Client) ClearFlaky(ctx context.Context, method string) error {
	return c.rdb.Del(ctx, flakyKey(method), lastSeenKey(method)).Err()
}

// FormatMember encodes a tuple as "index:name".
func FormatMember(index int, name string) string {
	return strconv.Itoa(index) + ":" + name
}

// ParseMember parses the "index:name" format.
func ParseMember(s string) (index int, name string, err error) {
	idx, name, ok := strings.Cut(s, ":")
	if !ok {
		return 0, "", fmt.Errorf("invalid member format: %s", s)
	}
	index, err = strconv.Atoi(idx)
	if err != nil {
		return 0, "", fmt.Errorf("invalid index: %w", err)
	}
	return index, name, nil
}
