package table

import "testing"

func TestSelectSQL(t *testing.T) {
	q := Query{
		Filters: []Filter{Eq("cooker_id", "u1"), In("status", []string{"placed", "cooking"})},
		Sort:    []Sort{{Column: "created_at", Desc: true}},
		Limit:   10,
	}

	sql, args, err := postgresDialect.selectSQL("orders", q)
	if err != nil {
		t.Fatalf("selectSQL: %v", err)
	}
	want := `SELECT * FROM "orders" WHERE "cooker_id" = $1 AND "status" IN ($2, $3) ORDER BY "created_at" DESC LIMIT 10`
	if sql != want {
		t.Fatalf("sql = %s\nwant  %s", sql, want)
	}
	if len(args) != 3 || args[0] != "u1" || args[2] != "cooking" {
		t.Fatalf("args = %v", args)
	}

	sql, _, err = mysqlDialect.selectSQL("orders", q)
	if err != nil {
		t.Fatalf("selectSQL: %v", err)
	}
	want = "SELECT * FROM `orders` WHERE `cooker_id` = ? AND `status` IN (?, ?) ORDER BY `created_at` DESC LIMIT 10"
	if sql != want {
		t.Fatalf("sql = %s\nwant  %s", sql, want)
	}
}

func TestUpdateSQL_PlaceholdersContinue(t *testing.T) {
	sql, args, err := postgresDialect.updateSQL("orders", Row{"status": "cooking"}, []Filter{Eq("id", "o1")})
	if err != nil {
		t.Fatalf("updateSQL: %v", err)
	}
	want := `UPDATE "orders" SET "status" = $1 WHERE "id" = $2`
	if sql != want || len(args) != 2 || args[1] != "o1" {
		t.Fatalf("sql = %s args = %v", sql, args)
	}
}

func TestInsertAndDeleteSQL(t *testing.T) {
	sql, args, err := postgresDialect.insertSQL("order_items", Row{"order_id": "o1", "id": "i1"})
	if err != nil {
		t.Fatalf("insertSQL: %v", err)
	}
	if sql != `INSERT INTO "order_items" ("id", "order_id") VALUES ($1, $2)` || args[0] != "i1" {
		t.Fatalf("sql = %s args = %v", sql, args)
	}

	sql, _, err = postgresDialect.deleteSQL("order_items", []Filter{In("order_id", nil)})
	if err != nil {
		t.Fatalf("deleteSQL: %v", err)
	}
	if sql != `DELETE FROM "order_items" WHERE FALSE` {
		t.Fatalf("sql = %s", sql)
	}
}

func TestRejectsBadIdentifiers(t *testing.T) {
	if _, _, err := postgresDialect.selectSQL(`orders"; drop table users; --`, Query{}); err == nil {
		t.Fatal("expected identifier error")
	}
	if _, _, err := postgresDialect.selectSQL("orders", Query{Sort: []Sort{{Column: "1=1"}}}); err == nil {
		t.Fatal("expected identifier error for sort column")
	}
}
