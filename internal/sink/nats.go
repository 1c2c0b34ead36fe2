package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/vk/taskgridgo/internal/ctxlog"
)

// NATSSink publishes each event as JSON on a NATS subject so external
// consumers can follow session progress.
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

// NewNATSSink dials the NATS server at url. The connection is owned by
// the sink and released by Close.
func NewNATSSink(ctx context.Context, url, subject string) (*NATSSink, error) {
	conn, err := nats.Connect(url, nats.Name("taskgrid-progress"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	ctxlog.FromContext(ctx).Info("Connected progress sink to NATS.", "url", url, "subject", subject)
	return &NATSSink{conn: conn, subject: subject}, nil
}

func (s *NATSSink) Publish(_ context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding progress event: %w", err)
	}
	if err := s.conn.Publish(s.subject, payload); err != nil {
		return fmt.Errorf("publishing progress event: %w", err)
	}
	return nil
}

func (s *NATSSink) Close() {
	s.conn.Drain() //nolint:errcheck
}
