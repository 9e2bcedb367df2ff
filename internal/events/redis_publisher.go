package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	publishQueueSize = 256
	publishTimeout   = 500 * time.Millisecond
)

// ErrPublishQueueFull is returned by Handle when Run cannot keep up.
var ErrPublishQueueFull = errors.New("redis publish queue full")

// RedisPublisher forwards events as JSON to a Redis channel so other processes
// can fan them out. Handle only enqueues; Run does the network work.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	queue   chan Event
	timeout time.Duration
	logger  *zap.Logger
}

// NewRedisPublisher builds a publisher; a nil client yields a nil publisher.
func NewRedisPublisher(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{
		client:  client,
		channel: channel,
		queue:   make(chan Event, publishQueueSize),
		timeout: publishTimeout,
		logger:  logger,
	}
}

// Handle queues one event for Run. It never waits on Redis.
func (p *RedisPublisher) Handle(_ context.Context, event Event) error {
	select {
	case p.queue <- event:
		return nil
	default:
		return fmt.Errorf("%w: dropped %s", ErrPublishQueueFull, event.Type)
	}
}

// Run drains the queue until ctx is cancelled. Each publish gets its own short
// deadline; failures are logged and the event is dropped.
func (p *RedisPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-p.queue:
			if err := p.publish(ctx, event); err != nil {
				p.logger.Warn("redis event publish failed",
					zap.String("event_type", string(event.Type)),
					zap.Int64("complaint_id", event.ComplaintID),
					zap.Error(err))
			}
		}
	}
}

func (p *RedisPublisher) publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Register subscribes the publisher to every complaint event.
func (p *RedisPublisher) Register(d Dispatcher) {
	if p == nil || d == nil {
		return
	}
	for _, t := range AllEventTypes {
		d.Subscribe(t, p.Handle)
	}
}
