package heartbeat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/sakky016/ApplicationWatchdog/internal/logging"
	"github.com/sakky016/ApplicationWatchdog/internal/natsutil"
	"github.com/sakky016/ApplicationWatchdog/types"
)

// ErrNoName is returned by Start when no application name was set.
var ErrNoName = errors.New("application name not set")

// Publisher writes supervisor status snapshots to NATS KV.
//
// Publisher implements types.StatusReporter. Between reports it rewrites the
// last snapshot every refresh interval so the entry does not expire while the
// supervisor is alive but polling slowly.
type Publisher struct {
	kv       jetstream.KeyValue
	prefix   string
	name     string
	interval time.Duration
	logger   types.Logger

	mu      sync.Mutex
	started bool
	last    types.Status
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Compile-time assertion that Publisher implements StatusReporter.
var _ types.StatusReporter = (*Publisher)(nil)

// New creates a new status publisher.
//
// The KV bucket TTL should be a few multiples of the refresh interval.
//
// Parameters:
//   - kv: JetStream KV bucket for status storage
//   - prefix: Key prefix for status keys (e.g., "status")
//   - interval: Refresh interval; 0 disables background refresh
//
// Returns:
//   - *Publisher: New status publisher instance
func New(kv jetstream.KeyValue, prefix string, interval time.Duration) *Publisher {
	return &Publisher{
		kv:       kv,
		prefix:   prefix,
		interval: interval,
		logger:   logging.NewNop(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// SetName sets the application name used in the status key.
//
// Must be called before Start().
func (p *Publisher) SetName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.name = name
}

// SetLogger sets the logger for background refresh failures.
func (p *Publisher) SetLogger(logger types.Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if logger != nil {
		p.logger = logger
	}
}

// Start writes an initial status and begins background refresh.
//
// Parameters:
//   - ctx: Context for the initial write
//
// Returns:
//   - error: ErrPublisherAlreadyStarted if already running, ErrNoName if no
//     name is set, or the KV error from the initial write
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return types.ErrPublisherAlreadyStarted
	}

	if p.name == "" {
		return ErrNoName
	}

	p.last = types.Status{
		Name:       p.name,
		State:      types.StateHealthy,
		StateName:  types.StateHealthy.String(),
		ObservedAt: time.Now(),
	}

	if err := p.publish(ctx, p.last); err != nil {
		return fmt.Errorf("failed to publish initial status: %w", err)
	}

	p.started = true

	if p.interval > 0 {
		go p.refreshLoop()
	} else {
		close(p.doneCh)
	}

	return nil
}

// Report stores and publishes a status snapshot.
//
// The snapshot's Name is replaced by the publisher's name.
//
// Parameters:
//   - ctx: Context bounding the KV write
//   - status: Snapshot to publish
//
// Returns:
//   - error: ErrPublisherNotStarted before Start, or the KV error
func (p *Publisher) Report(ctx context.Context, status types.Status) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return types.ErrPublisherNotStarted
	}

	status.Name = p.name
	p.last = status
	p.mu.Unlock()

	return p.publish(ctx, status)
}

// Stop stops background refresh and deletes the status entry from KV.
//
// Returns:
//   - error: ErrPublisherNotStarted if not running, or the delete error
func (p *Publisher) Stop() error {
	p.mu.Lock()

	if !p.started {
		p.mu.Unlock()
		return types.ErrPublisherNotStarted
	}

	close(p.stopCh)
	p.started = false
	name := p.name

	p.mu.Unlock()

	<-p.doneCh

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := p.kv.Delete(ctx, p.keyFor(name)); err != nil {
		return fmt.Errorf("stopped but failed to delete status: %w", err)
	}

	return nil
}

// refreshLoop rewrites the last snapshot until Stop is called.
func (p *Publisher) refreshLoop() {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.mu.Lock()
			status := p.last
			logger := p.logger
			p.mu.Unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := p.publish(ctx, status)
			cancel()

			switch {
			case err == nil:
			case natsutil.IsConnectivityError(err):
				logger.Warn("status mirror unreachable, will retry", "name", status.Name, "error", err)
			default:
				logger.Error("status refresh failed", "name", status.Name, "error", err)
			}
		}
	}
}

// publish writes status as JSON under the publisher's key.
func (p *Publisher) publish(ctx context.Context, status types.Status) error {
	value, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}

	if _, err := p.kv.Put(ctx, p.keyFor(status.Name), value); err != nil {
		return fmt.Errorf("failed to publish status for %s: %w", status.Name, err)
	}

	return nil
}

func (p *Publisher) keyFor(name string) string {
	return KeyFor(p.prefix, name)
}

// Name returns the application name.
func (p *Publisher) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.name
}

// IsStarted returns whether the publisher is currently running.
func (p *Publisher) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.started
}

// KeyFor returns the KV key for an application's status.
func KeyFor(prefix, name string) string {
	return fmt.Sprintf("%s.%s", prefix, name)
}
