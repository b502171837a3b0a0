package table

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type decodedItem struct {
	ID       string          `json:"id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Menu     *decodedMenu    `json:"menu_item,omitempty"`
}

type decodedMenu struct {
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Available bool      `json:"available"`
}

func TestDecode(t *testing.T) {
	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	rows := []Row{
		{
			"id": "i1", "quantity": int64(2), "price": "12.50",
			"menu_item": Row{"title": "Jollof", "created_at": created, "available": int64(1)},
		},
		{
			"id": "i2", "quantity": 1.0, "price": 3.25,
			"menu_item": Row{"title": "Suya", "created_at": "2026-03-04T05:06:07Z"},
		},
		{"id": "i3", "quantity": "4", "price": []byte("1"), "menu_item": nil},
	}

	var out []decodedItem
	if err := Decode(rows, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0].Quantity != 2 || !out[0].Price.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("row 0 = %+v", out[0])
	}
	if out[0].Menu == nil || !out[0].Menu.CreatedAt.Equal(created) || !out[0].Menu.Available {
		t.Fatalf("row 0 menu = %+v", out[0].Menu)
	}
	if !out[1].Menu.CreatedAt.Equal(created) || !out[1].Price.Equal(decimal.RequireFromString("3.25")) {
		t.Fatalf("row 1 = %+v", out[1])
	}
	if out[2].Menu != nil || out[2].Quantity != 4 {
		t.Fatalf("row 2 = %+v", out[2])
	}
}

type DecodedOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type decodedOrderWithItems struct {
	DecodedOrder
	Items []decodedItem `json:"items"`
}

func TestDecode_Embedded(t *testing.T) {
	row := Row{
		"id": "o1", "status": "placed",
		"items": []Row{{"id": "i1", "quantity": 2, "price": "1.00"}},
	}

	var out decodedOrderWithItems
	if err := Decode(row, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.ID != "o1" || out.Status != "placed" {
		t.Fatalf("embedded fields = %+v", out.DecodedOrder)
	}
	if len(out.Items) != 1 || out.Items[0].Quantity != 2 {
		t.Fatalf("items = %+v", out.Items)
	}
}
