// Package monitor watches a deployment through an ephemeral notification
// channel pair. It provisions the pair before the deployment is submitted,
// dispatches decoded stack events to registered handlers while the
// deployment runs, and tears the pair down afterwards regardless of outcome.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/envforge/envforge/internal/util/naming"
)

// Outcome is the final result of watching a deployment.
type Outcome string

const (
	// OutcomeComplete means the root stack reached a successful terminal
	// status, or every registered handler finished on its own.
	OutcomeComplete Outcome = "COMPLETE"
	// OutcomeFailed means the root stack reached a failed terminal status.
	// A completed rollback counts as failed: the deployment did not converge
	// to the requested state.
	OutcomeFailed Outcome = "FAILED"
	// OutcomeTimedOut means the watch budget elapsed before any terminal
	// status arrived.
	OutcomeTimedOut Outcome = "TIMED_OUT"
)

// RawMessage is one undecoded message pulled from the channel.
type RawMessage struct {
	// Handle identifies the message for deletion after processing.
	Handle string
	// Body is the raw message payload.
	Body []byte
}

// ChannelPair identifies one provisioned publish/pull channel pair.
type ChannelPair struct {
	// Name is the run-scoped name both halves of the pair share.
	Name string
	// PublishEndpoint is handed to the deployment service so it can emit
	// status notifications, e.g. a topic ARN.
	PublishEndpoint string
	// PullEndpoint is where messages are received from, e.g. a queue URL.
	PullEndpoint string
}

// Transport provisions and drains channel pairs. Implementations are
// expected to clean up partially created resources when provisioning fails
// partway through.
type Transport interface {
	CreateChannelPair(ctx context.Context, name string) (ChannelPair, error)
	DeleteChannelPair(ctx context.Context, pair ChannelPair) error
	Pull(ctx context.Context, pair ChannelPair, maxMessages int, wait time.Duration) ([]RawMessage, error)
	DeleteMessage(ctx context.Context, pair ChannelPair, handle string) error
}

// TransportError wraps a failure of the underlying channel transport.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("notification transport failed to %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Handler consumes decoded stack events. Returning true deactivates the
// handler: it will not see any further events in this watch.
type Handler interface {
	HandleStackEvent(ev Event) bool
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ev Event) bool

func (f HandlerFunc) HandleStackEvent(ev Event) bool {
	return f(ev)
}

type registration struct {
	handler Handler
	active  bool
}

// Channel is a provisioned channel pair tracked for teardown. Teardown is
// idempotent so callers can defer it unconditionally.
type Channel struct {
	pair ChannelPair
	torn bool
}

// PublishEndpoint returns the endpoint the deployment submission must be
// pointed at so status notifications reach the watch loop.
func (c *Channel) PublishEndpoint() string {
	return c.pair.PublishEndpoint
}

// Name returns the run-scoped name of the channel pair.
func (c *Channel) Name() string {
	return c.pair.Name
}

// Logger receives warnings about dropped messages and teardown problems.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Monitor runs the watch loop for one deployment.
type Monitor struct {
	transport Transport
	log       Logger
	handlers  []*registration
	timeout   time.Duration
	batchSize int
	pollWait  time.Duration
	now       func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithTimeout sets the wall-clock budget for a watch.
func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) { m.timeout = d }
}

// WithBatchSize sets how many messages are requested per pull.
func WithBatchSize(n int) Option {
	return func(m *Monitor) { m.batchSize = n }
}

// WithPollWait sets the long-poll wait per pull.
func WithPollWait(d time.Duration) Option {
	return func(m *Monitor) { m.pollWait = d }
}

// WithLogger sets the warning logger.
func WithLogger(l Logger) Option {
	return func(m *Monitor) { m.log = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// New returns a Monitor polling the given transport. Defaults match the
// deployment service limits: batches of 10 messages with a 5 second long
// poll, and a 2 hour watch budget.
func New(transport Transport, opts ...Option) *Monitor {
	m := &Monitor{
		transport: transport,
		log:       nopLogger{},
		timeout:   2 * time.Hour,
		batchSize: 10,
		pollWait:  5 * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddHandler registers a handler for subsequent watches.
func (m *Monitor) AddHandler(h Handler) {
	m.handlers = append(m.handlers, &registration{handler: h, active: true})
}

// Setup provisions a fresh channel pair for one run of the named
// environment. The returned Channel must be passed to Teardown when the
// watch is over, whatever its outcome.
func (m *Monitor) Setup(ctx context.Context, env string) (*Channel, error) {
	name := naming.Channel(env, m.now(), naming.RunSuffix())
	pair, err := m.transport.CreateChannelPair(ctx, name)
	if err != nil {
		return nil, &TransportError{Op: "create channel pair", Err: err}
	}
	return &Channel{pair: pair}, nil
}

// Teardown deletes the channel pair. Calling it again, or with a nil
// channel, is a no-op.
func (m *Monitor) Teardown(ctx context.Context, ch *Channel) error {
	if ch == nil || ch.torn {
		return nil
	}
	ch.torn = true
	if err := m.transport.DeleteChannelPair(ctx, ch.pair); err != nil {
		return &TransportError{Op: "delete channel pair", Err: err}
	}
	return nil
}

// Watch drains the channel in batches until the named root stack reaches a
// terminal status, every registered handler deactivates itself, or the
// budget runs out. Malformed message bodies are logged, deleted, and never
// retried. Pull failures abort the watch; DeleteChannelPair is still the
// caller's responsibility via Teardown.
func (m *Monitor) Watch(ctx context.Context, ch *Channel, rootStack string) (Outcome, error) {
	deadline := m.now().Add(m.timeout)

	for {
		msgs, err := m.transport.Pull(ctx, ch.pair, m.batchSize, m.pollWait)
		if err != nil {
			return "", &TransportError{Op: "pull messages", Err: err}
		}

		terminal := ""
		for _, msg := range msgs {
			ev, perr := parseEvent(msg.Body, m.now())
			if perr != nil {
				m.log.Printf("dropping message from channel %s: %v", ch.pair.Name, perr)
				m.deleteMessage(ctx, ch, msg.Handle)
				continue
			}

			for _, reg := range m.handlers {
				if reg.active && reg.handler.HandleStackEvent(ev) {
					reg.active = false
				}
			}
			m.deleteMessage(ctx, ch, msg.Handle)

			if terminal == "" && ev.Kind == stackKind && ev.LogicalID == rootStack && IsTerminal(ev.Status) {
				terminal = ev.Status
			}
		}

		if terminal != "" {
			if successStatuses[terminal] {
				return OutcomeComplete, nil
			}
			return OutcomeFailed, nil
		}
		if len(m.handlers) > 0 && m.activeHandlers() == 0 {
			return OutcomeComplete, nil
		}
		if !m.now().Before(deadline) {
			return OutcomeTimedOut, nil
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("watch cancelled: %w", ctx.Err())
		default:
		}
	}
}

const stackKind = "AWS::CloudFormation::Stack"

func (m *Monitor) deleteMessage(ctx context.Context, ch *Channel, handle string) {
	if err := m.transport.DeleteMessage(ctx, ch.pair, handle); err != nil {
		m.log.Printf("failed to delete message from channel %s: %v", ch.pair.Name, err)
	}
}

func (m *Monitor) activeHandlers() int {
	n := 0
	for _, reg := range m.handlers {
		if reg.active {
			n++
		}
	}
	return n
}
