package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "git.home.luguber.info/inful/backupstate/internal/foundation/errors"
)

const (
	connectTimeout = 5 * time.Second
	flushTimeout   = 5 * time.Second
)

// NATSPublisher publishes drift events as JSON on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	host    string
	logger  *slog.Logger
}

// NewNATSPublisher connects to url. Events go to subject.
func NewNATSPublisher(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.Name("backupstate"),
		nats.Timeout(connectTimeout),
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}

	host, _ := os.Hostname()
	logger.Info("NATS publisher initialized for drift notifications",
		slog.String("url", url),
		slog.String("subject", subject))

	return &NATSPublisher{conn: conn, subject: subject, host: host, logger: logger}, nil
}

// PublishDrift publishes event and flushes, bounded by ctx.
func (p *NATSPublisher) PublishDrift(ctx context.Context, event DriftEvent) error {
	if event.Host == "" {
		event.Host = p.host
	}
	data, err := json.Marshal(event)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal drift event").Build()
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to publish drift event").
			WithContext("subject", p.subject).
			Build()
	}
	fctx, cancel := flushContext(ctx)
	defer cancel()
	if err := p.conn.FlushWithContext(fctx); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to flush drift event").
			WithContext("subject", p.subject).
			Build()
	}

	p.logger.Debug("Published drift event",
		slog.String("subject", p.subject),
		slog.String("run_id", event.RunID))
	return nil
}

// flushContext bounds ctx by flushTimeout unless it already carries a deadline.
// FlushWithContext rejects contexts without one.
func flushContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, flushTimeout)
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
