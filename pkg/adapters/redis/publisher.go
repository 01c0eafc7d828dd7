// Package redis streams run traces through Redis.
//
// Every trace entry is published on a per-run channel and appended to a
// short-lived replay list, so late subscribers can catch up.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/stepflow/internal/logging"
	"github.com/aretw0/stepflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// ErrMissingRunID is returned when an event does not name its run.
var ErrMissingRunID = errors.New("trace event has no run id")

// Message is the payload published for every event.
type Message struct {
	Type domain.EventType  `json:"type"`
	Node *domain.NodeEvent `json:"node,omitempty"`
	Run  *domain.RunEvent  `json:"run,omitempty"`
	// Diff holds the state keys changed by the node, relative to the
	// previous successful node of the same run.
	Diff domain.StateDiff `json:"diff,omitempty"`
}

// TracePublisher implements ports.TraceSink using Redis PUBLISH and lists.
type TracePublisher struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger

	mu   sync.Mutex
	last map[string]domain.State
}

type Option func(*TracePublisher)

// WithTTL sets the expiration of replay lists.
func WithTTL(ttl time.Duration) Option {
	return func(p *TracePublisher) {
		p.ttl = ttl
	}
}

// WithPrefix sets the key and channel prefix.
func WithPrefix(prefix string) Option {
	return func(p *TracePublisher) {
		p.prefix = prefix
	}
}

// WithLogger sets the logger used to report publish failures from hooks.
func WithLogger(logger *slog.Logger) Option {
	return func(p *TracePublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a publisher with its own client.
func New(address, password string, db int, opts ...Option) *TracePublisher {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a publisher from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *TracePublisher {
	p := &TracePublisher{
		client: client,
		prefix: "stepflow:",
		ttl:    time.Hour,
		logger: logging.NewNop(),
		last:   make(map[string]domain.State),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel returns the pub/sub channel of a run.
func (p *TracePublisher) Channel(runID string) string {
	return p.prefix + "trace:" + runID
}

// RunsChannel returns the channel that receives every run_finish event.
func (p *TracePublisher) RunsChannel() string {
	return p.prefix + "runs"
}

func (p *TracePublisher) replayKey(runID string) string {
	return p.prefix + "replay:" + runID
}

func streamID(base domain.EventBase) (string, error) {
	if base.RunID == "" {
		return "", fmt.Errorf("%w: %s event of graph %q", ErrMissingRunID, base.Type, base.GraphID)
	}
	return base.RunID, nil
}

// PublishNode publishes a node event with the state diff of its entry.
func (p *TracePublisher) PublishNode(ctx context.Context, ev *domain.NodeEvent) error {
	id, err := streamID(ev.EventBase)
	if err != nil {
		return err
	}
	msg := Message{Type: ev.Type, Node: ev}

	if ev.Entry != nil && ev.Entry.StateSnapshot != nil {
		p.mu.Lock()
		msg.Diff = domain.Diff(p.last[id], ev.Entry.StateSnapshot)
		p.last[id] = ev.Entry.StateSnapshot.Clone()
		p.mu.Unlock()
	}

	return p.send(ctx, id, msg, p.Channel(id))
}

// PublishRun publishes a run event on the run channel and, for run_finish,
// on the global runs channel.
func (p *TracePublisher) PublishRun(ctx context.Context, ev *domain.RunEvent) error {
	id, err := streamID(ev.EventBase)
	if err != nil {
		return err
	}
	channels := []string{p.Channel(id)}
	if ev.Type == domain.EventRunFinish {
		channels = append(channels, p.RunsChannel())

		p.mu.Lock()
		delete(p.last, id)
		p.mu.Unlock()
	}
	return p.send(ctx, id, Message{Type: ev.Type, Run: ev}, channels...)
}

func (p *TracePublisher) send(ctx context.Context, id string, msg Message, channels ...string) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal trace message: %w", err)
	}

	pipe := p.client.Pipeline()
	for _, ch := range channels {
		pipe.Publish(ctx, ch, data)
	}
	pipe.RPush(ctx, p.replayKey(id), data)
	if p.ttl > 0 {
		pipe.Expire(ctx, p.replayKey(id), p.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Replay returns every message published so far for a run, oldest first.
func (p *TracePublisher) Replay(ctx context.Context, runID string) ([]Message, error) {
	raw, err := p.client.LRange(ctx, p.replayKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read replay list: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for _, r := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(r), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trace message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

// Subscribe listens to the channel of a run.
// The caller must Close the returned subscription.
func (p *TracePublisher) Subscribe(ctx context.Context, runID string) *backend.PubSub {
	return p.client.Subscribe(ctx, p.Channel(runID))
}

// Hooks adapts the publisher to graph lifecycle hooks.
// Publish failures are logged and never interrupt the run.
func (p *TracePublisher) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, ev *domain.RunEvent) {
			if err := p.PublishRun(ctx, ev); err != nil {
				p.logger.Warn("trace publish failed", "run_id", ev.RunID, "error", err)
			}
		},
		OnNodeLeave: func(ctx context.Context, ev *domain.NodeEvent) {
			if err := p.PublishNode(ctx, ev); err != nil {
				p.logger.Warn("trace publish failed", "run_id", ev.RunID, "node", ev.Node, "error", err)
			}
		},
		OnRunFinish: func(ctx context.Context, ev *domain.RunEvent) {
			if err := p.PublishRun(ctx, ev); err != nil {
				p.logger.Warn("trace publish failed", "run_id", ev.RunID, "error", err)
			}
		},
	}
}

// Ping checks the connection.
func (p *TracePublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (p *TracePublisher) Close() error {
	return p.client.Close()
}
