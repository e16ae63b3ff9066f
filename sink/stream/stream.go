// Package stream appends notification envelopes to a Redis stream.
package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ed-sim/ed-sim/sink"
)

// DefaultMaxLen caps the stream when no limit is configured.
const DefaultMaxLen = 100_000

// Config configures the Redis connection. The sink is disabled when Addr is empty.
type Config struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Stream   string `yaml:"stream"`
	MaxLen   int64  `yaml:"max_len" validate:"gte=0"`
}

// Enabled reports whether a Redis address is configured.
func (c Config) Enabled() bool {
	return c.Addr != ""
}

// Client is the subset of *redis.Client the appender uses.
type Client interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Appender writes one stream entry per envelope, trimming approximately to maxLen.
type Appender struct {
	client Client
	stream string
	maxLen int64
}

// NewAppender wraps a client. Empty stream and non-positive maxLen use defaults.
func NewAppender(client Client, stream string, maxLen int64) *Appender {
	if stream == "" {
		stream = "edsim:notifications"
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Appender{client: client, stream: stream, maxLen: maxLen}
}

func (a *Appender) Name() string { return "redis" }

func (a *Appender) Deliver(ctx context.Context, env sink.Envelope) error {
	payload, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("marshalling envelope %s: %w", env.ID, err)
	}
	err = a.client.XAdd(ctx, &redis.XAddArgs{
		Stream: a.stream,
		MaxLen: a.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"id":      env.ID,
			"kind":    string(env.Kind),
			"at":      env.At.Format(time.RFC3339Nano),
			"payload": string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("appending to stream %s: %w", a.stream, err)
	}
	return nil
}

// Connect opens a client, checks it with PING and returns an Appender plus the client's
// Close.
func Connect(ctx context.Context, cfg Config) (*Appender, func() error, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("could not connect to Redis: %w", err)
	}
	logrus.Infof("Connected to Redis at %s.", cfg.Addr)
	return NewAppender(rdb, cfg.Stream, cfg.MaxLen), rdb.Close, nil
}
