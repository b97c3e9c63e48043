package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const defaultFlushTimeout = 5 * time.Second

type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("voucher-engine"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

// Publish flushes so a relayed job is only marked sent once the server has it.
func (n *NATSPublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	slog.DebugContext(ctx, "publishing event", "subject", subject, "bytes", len(payload))

	if err := n.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	var err error
	if _, ok := ctx.Deadline(); ok {
		err = n.conn.FlushWithContext(ctx)
	} else {
		err = n.conn.FlushTimeout(defaultFlushTimeout)
	}
	if err != nil {
		return fmt.Errorf("failed to flush %s: %w", subject, err)
	}
	return nil
}

func (n *NATSPublisher) Close() error {
	return n.conn.Drain()
}

// LogPublisher stands in when no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (LogPublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	slog.InfoContext(ctx, "event", "subject", subject, "payload", string(payload))
	return nil
}

func (LogPublisher) Close() error {
	return nil
}
