// Package events publishes gallery change observations.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"

	"github.com/gauthierbraillon/mediamix/internal/config"
	"github.com/gauthierbraillon/mediamix/internal/logger"
	"github.com/gauthierbraillon/mediamix/internal/poller"
)

// DefaultPublishTimeout bounds a single publish.
const DefaultPublishTimeout = 5 * time.Second

// Event is the published form of a poller.Delta.
type Event struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Previous   int       `json:"previous"`
	Current    int       `json:"current"`
	Added      int       `json:"added"`
	ObservedAt time.Time `json:"observed_at"`
}

// FromDelta builds an Event observed at now.
func FromDelta(d poller.Delta, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Source:     d.Source,
		Previous:   d.Previous,
		Current:    d.Current,
		Added:      d.Added,
		ObservedAt: now.UTC(),
	}
}

// Publisher delivers events somewhere.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// LogPublisher writes events to the log.
type LogPublisher struct {
	log logger.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.log.Info("new items in gallery",
		logger.String("event_id", e.ID),
		logger.String("source", e.Source),
		logger.Int("previous", e.Previous),
		logger.Int("current", e.Current),
		logger.Int("added", e.Added))
	return nil
}

// RedisPublisher publishes events as JSON on a Redis channel.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
	timeout time.Duration
}

// NewRedisPublisher creates a RedisPublisher on channel.
func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	if channel == "" {
		channel = config.DefaultEventsChannel
	}
	return &RedisPublisher{client: client, channel: channel, timeout: DefaultPublishTimeout}
}

// NewRedisClient creates a client from cfg. It returns nil when no
// address is configured.
func NewRedisClient(cfg config.EventsConfig) *redis.Client {
	if cfg.RedisAddress == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.client.Publish(pubCtx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Fanout publishes to every publisher, even when some fail.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) error {
	var result *multierror.Error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Handler adapts pub to a poller.OnDelta callback. Publish failures are
// logged and never reach the poller.
func Handler(ctx context.Context, pub Publisher, log logger.Logger) func(poller.Delta) {
	return func(d poller.Delta) {
		e := FromDelta(d, time.Now())
		if err := pub.Publish(ctx, e); err != nil {
			log.Error("failed to publish gallery event",
				logger.String("event_id", e.ID),
				logger.Error(err))
		}
	}
}
