package mqtt

import (
	"io"
	"log"
	"testing"

	telemetry "smartwaste-cloud/internal/telemetry/domain"
)

type captureApplier struct {
	updates []telemetry.Update
}

func (c *captureApplier) Apply(update telemetry.Update) {
	c.updates = append(c.updates, update)
}

func newTestSubscriber(t *testing.T, applier Applier) *Subscriber {
	t.Helper()
	subscriber, err := NewSubscriber("tcp://broker.local:1883", "waste/bin/data", []string{"bin1", "bin2"}, applier, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new subscriber: %v", err)
	}
	return subscriber
}

func TestHandleMessageAppliesDecodedUpdate(t *testing.T) {
	applier := &captureApplier{}
	subscriber := newTestSubscriber(t, applier)

	subscriber.handleMessage("waste/bin/data", []byte(`{"bin1_level": 45}`))

	if len(applier.updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(applier.updates))
	}
	if applier.updates[0]["bin1"] != 45 {
		t.Fatalf("unexpected update: %v", applier.updates[0])
	}
}

func TestHandleMessageIgnoresOtherTopics(t *testing.T) {
	applier := &captureApplier{}
	subscriber := newTestSubscriber(t, applier)

	subscriber.handleMessage("waste/bin/other", []byte(`{"bin1_level": 45}`))

	if len(applier.updates) != 0 {
		t.Fatalf("expected no updates, got %d", len(applier.updates))
	}
}

func TestHandleMessageDropsMalformedPayload(t *testing.T) {
	applier := &captureApplier{}
	subscriber := newTestSubscriber(t, applier)

	subscriber.handleMessage("waste/bin/data", []byte(`not json`))
	if len(applier.updates) != 0 {
		t.Fatalf("malformed payload reached the updater: %v", applier.updates)
	}

	// The next valid message still goes through.
	subscriber.handleMessage("waste/bin/data", []byte(`{"bin2_level": 50}`))
	if len(applier.updates) != 1 || applier.updates[0]["bin2"] != 50 {
		t.Fatalf("valid message after drop not applied: %v", applier.updates)
	}
}

func TestNewSubscriberValidatesArguments(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	if _, err := NewSubscriber("", "topic", []string{"bin1"}, &captureApplier{}, logger); err == nil {
		t.Fatal("expected error for empty broker url")
	}
	if _, err := NewSubscriber("tcp://broker.local:1883", "", []string{"bin1"}, &captureApplier{}, logger); err == nil {
		t.Fatal("expected error for empty topic")
	}
	if _, err := NewSubscriber("tcp://broker.local:1883", "topic", nil, &captureApplier{}, logger); err == nil {
		t.Fatal("expected error for empty fleet")
	}
	if _, err := NewSubscriber("tcp://broker.local:1883", "topic", []string{"bin1"}, nil, logger); err == nil {
		t.Fatal("expected error for nil applier")
	}
}
