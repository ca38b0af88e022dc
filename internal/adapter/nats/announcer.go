// Package nats implements the announce port using NATS JetStream.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const streamName = "RELAY"

// Announcer publishes protocol and error events to a JetStream stream.
// Events are fire-and-forget from the caller's point of view: the core
// never reads back from the sink.
type Announcer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// Connect establishes a connection to NATS and ensures the RELAY stream
// exists.
func Connect(ctx context.Context, url string) (*Announcer, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"a2a.>"},
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream stream create: %w", err)
	}

	slog.Info("nats connected", "url", url, "stream", streamName)
	return &Announcer{nc: nc, js: js}, nil
}

// Announce publishes one event. The event name maps to a subject by
// replacing the ":" separators with ".".
func (a *Announcer) Announce(ctx context.Context, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event, err)
	}
	if _, err := a.js.Publish(ctx, Subject(event), data); err != nil {
		return fmt.Errorf("nats publish %s: %w", event, err)
	}
	return nil
}

// Subject converts an event name ("a2a:message:formatted") to its NATS
// subject ("a2a.message.formatted").
func Subject(event string) string {
	return strings.ReplaceAll(event, ":", ".")
}

// IsConnected reports whether the underlying connection is up. Used by
// the health endpoint.
func (a *Announcer) IsConnected() bool {
	return a.nc.IsConnected()
}

// Drain gracefully flushes pending publishes before closing.
func (a *Announcer) Drain() error {
	return a.nc.Drain()
}

// Close shuts down the NATS connection immediately.
func (a *Announcer) Close() error {
	a.nc.Close()
	return nil
}
