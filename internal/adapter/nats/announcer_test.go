package nats

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/Strob0t/AgentRelay/internal/port/announce"
)

func TestSubject(t *testing.T) {
	cases := map[string]string{
		announce.EventMessageFormatted: "a2a.message.formatted",
		announce.EventError:            "a2a.error",
		announce.EventCircuitOpened:    "a2a.circuit.opened",
	}
	for event, want := range cases {
		if got := Subject(event); got != want {
			t.Errorf("Subject(%q) = %q, want %q", event, got, want)
		}
	}
}

// testConnect connects to NATS or skips the test if NATS_URL is not set.
func testConnect(t *testing.T) *Announcer {
	t.Helper()

	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}

	a, err := Connect(context.Background(), url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAnnounceRoundTrip(t *testing.T) {
	a := testConnect(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	consumer, err := a.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		FilterSubject: Subject(announce.EventMessageFormatted),
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		t.Fatalf("consumer: %v", err)
	}

	payload := map[string]string{"message_id": "m-1"}
	if err := a.Announce(ctx, announce.EventMessageFormatted, payload); err != nil {
		t.Fatalf("announce: %v", err)
	}

	msg, err := consumer.Next(jetstream.FetchMaxWait(5 * time.Second))
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	_ = msg.Ack()

	var got map[string]string
	if err := json.Unmarshal(msg.Data(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["message_id"] != "m-1" {
		t.Fatalf("expected message_id m-1, got %v", got)
	}
}
