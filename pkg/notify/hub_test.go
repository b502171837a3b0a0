package notify

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
)

func TestHub_RecentNewestFirst(t *testing.T) {
	h := NewHub(3, zap.NewNop())
	defer h.Close()

	for i := 1; i <= 5; i++ {
		h.Publish(LevelInfo, "order", fmt.Sprintf("event %d", i))
	}

	items, err := h.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want ring capacity 3", len(items))
	}
	if items[0].Message != "event 5" || items[2].Message != "event 3" {
		t.Fatalf("items = %+v", items)
	}

	items, err = h.Recent(1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(items) != 1 || items[0].Message != "event 5" {
		t.Fatalf("limited items = %+v", items)
	}
}
