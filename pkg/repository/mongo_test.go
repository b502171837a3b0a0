package repository

import (
	"context"
	"testing"
	"time"
)

func TestMemoryAuditTrail_Recent(t *testing.T) {
	ctx := context.Background()
	trail := NewMemoryAuditTrail()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, action := range []string{"place_order", "update_status", "delete_order"} {
		_ = trail.Record(ctx, &AuditLog{
			Service: "homecook", Action: action, EntityID: "o1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	_ = trail.Record(ctx, &AuditLog{Action: "place_order", EntityID: "o2"})

	logs, err := trail.Recent(ctx, "o1", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(logs) != 2 || logs[0].Action != "delete_order" || logs[1].Action != "update_status" {
		t.Fatalf("logs = %+v", logs)
	}
}
