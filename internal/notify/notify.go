// Package notify announces finished builds on NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docpress/internal/logging"
)

// BuildCompleted is the JSON payload published after every build.
type BuildCompleted struct {
	BuildID      string    `json:"build_id"`
	Mode         string    `json:"mode"`
	Outcome      string    `json:"outcome"`
	Indexed      int       `json:"indexed"`
	Work         int       `json:"work"`
	Published    int       `json:"published"`
	Failed       int       `json:"failed"`
	StaleRemoved int       `json:"stale_removed"`
	Newest       string    `json:"newest,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Notifier publishes build events.
type Notifier interface {
	BuildCompleted(ctx context.Context, ev BuildCompleted) error
	Close()
}

// Noop discards events.
type Noop struct{}

func (Noop) BuildCompleted(context.Context, BuildCompleted) error { return nil }
func (Noop) Close()                                              {}

// conn is the subset of *nats.Conn used here.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSNotifier publishes events on a core NATS subject.
type NATSNotifier struct {
	conn    conn
	subject string
	logger  *slog.Logger
}

// ConnectTimeout bounds the initial NATS dial.
const ConnectTimeout = 5 * time.Second

// NewNATS connects to url and publishes on subject.
func NewNATS(url, subject string, logger *slog.Logger) (*NATSNotifier, error) {
	if subject == "" {
		return nil, fmt.Errorf("nats subject is required")
	}
	nc, err := nats.Connect(url,
		nats.Name("docpress"),
		nats.Timeout(ConnectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return newNotifier(nc, subject, logger), nil
}

func newNotifier(c conn, subject string, logger *slog.Logger) *NATSNotifier {
	if logger == nil {
		logger = logging.Discard()
	}
	return &NATSNotifier{conn: c, subject: subject, logger: logger}
}

// BuildCompleted publishes ev and waits for the server to acknowledge the
// flush or ctx to expire.
func (n *NATSNotifier) BuildCompleted(ctx context.Context, ev BuildCompleted) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	n.logger.Debug("Published build event", "subject", n.subject, "build_id", ev.BuildID)
	return nil
}

func (n *NATSNotifier) Close() { n.conn.Close() }
