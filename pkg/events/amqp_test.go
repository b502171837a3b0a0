package events

import (
	"context"
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestPublishing(t *testing.T) {
	e := New(OrderStatusChanged, "o1", "u1", map[string]any{"status": "cooking"})

	msg, err := publishing(e, "homecook")
	if err != nil {
		t.Fatalf("publishing: %v", err)
	}
	if msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("delivery mode = %d", msg.DeliveryMode)
	}
	if msg.CorrelationId != "o1" || msg.MessageId != e.ID {
		t.Fatalf("ids = %q %q", msg.CorrelationId, msg.MessageId)
	}
	if msg.Headers["x-source"] != "homecook" {
		t.Fatalf("headers = %v", msg.Headers)
	}

	var got Event
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("body: %v", err)
	}
	if got.RoutingKey != OrderStatusChanged || got.Data["status"] != "cooking" {
		t.Fatalf("decoded = %+v", got)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	var p Publisher = &r
	if err := p.Publish(context.Background(), New(OrderDeleted, "o9", "", nil)); err != nil {
		t.Fatal(err)
	}
	if len(r.Events) != 1 || r.Events[0].OrderID != "o9" {
		t.Fatalf("events = %+v", r.Events)
	}
}
