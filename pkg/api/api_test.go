package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/homecook/pkg/auth"
	"github.com/example/homecook/pkg/cache"
	"github.com/example/homecook/pkg/config"
	"github.com/example/homecook/pkg/events"
	"github.com/example/homecook/pkg/models"
	"github.com/example/homecook/pkg/table"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

// countingStore counts top-level calls per table and fails the ones listed
// in fail, keyed "op:table".
type countingStore struct {
	*table.MemoryStore

	mu     sync.Mutex
	calls  map[string]int
	fail   map[string]error
	paused map[string]*gate
}

// gate holds the next matching call after it has read its rows.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newCountingStore() *countingStore {
	return &countingStore{
		MemoryStore: table.NewMemoryStore(),
		calls:       make(map[string]int),
		fail:        make(map[string]error),
		paused:      make(map[string]*gate),
	}
}

// pauseAfter makes the next call keyed "op:table" block once it has its
// result. entered is closed when it blocks; closing release lets it return.
func (s *countingStore) pauseAfter(key string) (entered <-chan struct{}, release chan<- struct{}) {
	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.paused[key] = g
	s.mu.Unlock()
	return g.entered, g.release
}

func (s *countingStore) wait(key string) {
	s.mu.Lock()
	g := s.paused[key]
	delete(s.paused, key)
	s.mu.Unlock()
	if g != nil {
		close(g.entered)
		<-g.release
	}
}

func (s *countingStore) hit(op, tbl string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op+":"+tbl]++
	if err := s.fail[op+":"+tbl]; err != nil {
		return &table.Error{Op: op, Table: tbl, Message: err.Error()}
	}
	return nil
}

func (s *countingStore) Select(ctx context.Context, tbl string, q table.Query) ([]table.Row, error) {
	if err := s.hit("select", tbl); err != nil {
		return nil, err
	}
	rows, err := s.MemoryStore.Select(ctx, tbl, q)
	s.wait("select:" + tbl)
	return rows, err
}

func (s *countingStore) Update(ctx context.Context, tbl string, patch table.Row, filters ...table.Filter) ([]table.Row, error) {
	if err := s.hit("update", tbl); err != nil {
		return nil, err
	}
	return s.MemoryStore.Update(ctx, tbl, patch, filters...)
}

func (s *countingStore) Delete(ctx context.Context, tbl string, filters ...table.Filter) ([]table.Row, error) {
	if err := s.hit("delete", tbl); err != nil {
		return nil, err
	}
	return s.MemoryStore.Delete(ctx, tbl, filters...)
}

func (s *countingStore) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func (s *countingStore) selects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, v := range s.calls {
		if len(k) > 7 && k[:7] == "select:" {
			n += v
		}
	}
	return n
}

func (s *countingStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

func (s *countingStore) failOn(key string, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[key] = errors.New(msg)
}

var base = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

var (
	chef1    = &auth.Principal{UserID: "u-chef1", Name: "Rosa", Role: models.RoleCooker}
	chef2    = &auth.Principal{UserID: "u-chef2", Name: "Ravi", Role: models.RoleCooker}
	chef3    = &auth.Principal{UserID: "u-chef3", Name: "Gwen", Role: models.RoleCooker}
	customer = &auth.Principal{UserID: "u-cust1", Name: "Bola", Role: models.RoleCustomer}
	courier  = &auth.Principal{UserID: "u-courier", Name: "Dan", Role: models.RoleDelivery}
	admin    = &auth.Principal{UserID: "u-admin", Name: "Ann", Role: models.RoleAdmin}
)

var featured = []string{"Spice Route", "Mama Rosa's Kitchen", "Green Bowl"}

func user(id, name string, role models.Role) table.Row {
	return table.Row{
		"id": id, "name": name, "email": id + "@example.com", "role": string(role),
		"avatar_url": "https://img.example.com/" + id, "phone": "", "created_at": base,
	}
}

func seed(db *countingStore) {
	db.Seed("users",
		user("u-chef1", "Rosa", models.RoleCooker),
		user("u-chef2", "Ravi", models.RoleCooker),
		user("u-chef3", "Gwen", models.RoleCooker),
		user("u-chef4", "Hal", models.RoleCooker),
		user("u-cust1", "Bola", models.RoleCustomer),
		user("u-cust2", "Chen", models.RoleCustomer),
		user("u-admin", "Ann", models.RoleAdmin),
	)
	db.Seed("cookers",
		table.Row{"id": "c1", "user_id": "u-chef1", "kitchen_name": "Mama Rosa's Kitchen"},
		table.Row{"id": "c2", "user_id": "u-chef2", "kitchen_name": "Spice Route"},
		table.Row{"id": "c3", "user_id": "u-chef3", "kitchen_name": "Green Bowl"},
		table.Row{"id": "c4", "user_id": "u-chef4", "kitchen_name": "Hidden Place"},
	)
	db.Seed("customers",
		table.Row{"id": "cu1", "user_id": "u-cust1", "address": "1 Main St"},
		table.Row{"id": "cu2", "user_id": "u-cust2", "address": "2 Side St"},
	)
	for _, chef := range []string{"u-chef1", "u-chef2", "u-chef3", "u-chef4"} {
		for i := 1; i <= 5; i++ {
			db.Seed("menu_items", table.Row{
				"id": fmt.Sprintf("m-%s-%d", chef, i), "cooker_id": chef,
				"title": fmt.Sprintf("Dish %d", i), "description": "", "category": "mains",
				"price": decimal.NewFromInt(int64(5 + i)), "image_url": "",
				"created_at": base.Add(time.Duration(i) * time.Minute),
			})
		}
	}
	db.Seed("orders",
		table.Row{"id": "o1", "customer_id": "u-cust1", "cooker_id": "u-chef1", "status": "placed",
			"total": decimal.NewFromInt(19), "created_at": base.Add(time.Hour)},
		table.Row{"id": "o2", "customer_id": "u-cust1", "cooker_id": "u-chef1", "status": "cooking",
			"total": decimal.NewFromInt(8), "created_at": base.Add(2 * time.Hour)},
		table.Row{"id": "o3", "customer_id": "u-cust2", "cooker_id": "u-chef2", "status": "placed",
			"total": decimal.NewFromInt(6), "created_at": base.Add(3 * time.Hour)},
		table.Row{"id": "o-empty", "customer_id": "u-cust1", "cooker_id": "u-chef2", "status": "placed",
			"total": decimal.Zero, "created_at": base.Add(4 * time.Hour)},
	)
	db.Seed("order_items",
		table.Row{"id": "i1", "order_id": "o1", "menu_item_id": "m-u-chef1-1", "quantity": 2, "price": decimal.NewFromInt(6)},
		table.Row{"id": "i2", "order_id": "o1", "menu_item_id": "m-u-chef1-2", "quantity": 1, "price": decimal.NewFromInt(7)},
		table.Row{"id": "i3", "order_id": "o2", "menu_item_id": "m-u-chef1-3", "quantity": 1, "price": decimal.NewFromInt(8)},
		table.Row{"id": "i4", "order_id": "o3", "menu_item_id": "m-u-chef2-1", "quantity": 1, "price": decimal.NewFromInt(6)},
	)
	db.Seed("deliveries",
		table.Row{"id": "d1", "order_id": "o1", "courier_id": "u-courier", "address": "1 Main St",
			"status": "assigned", "created_at": base.Add(time.Hour)},
	)
	db.Seed("reviews",
		table.Row{"id": "r1", "customer_id": "cu1", "cooker_id": "u-chef1", "rating": 5,
			"comment": "Lovely", "created_at": base.Add(time.Hour)},
		table.Row{"id": "r2", "customer_id": "cu2", "cooker_id": "u-gone", "rating": 2,
			"comment": "Cold", "created_at": base.Add(2 * time.Hour)},
	)
}

type fixture struct {
	db     *countingStore
	cache  *cache.Memory
	events *events.Recorder
	api    *Endpoints
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newCountingStore()
	seed(db)
	f := &fixture{
		db:     db,
		cache:  cache.NewMemory(0),
		events: &events.Recorder{},
	}
	f.api = New(db, Options{
		Cache:   f.cache,
		Events:  f.events,
		Landing: config.LandingConfig{FeaturedKitchens: featured, PerKitchenCap: 3},
		Logger:  zaptest.NewLogger(t),
	})
	f.api.now = func() time.Time { return base.Add(24 * time.Hour) }
	t.Cleanup(func() { _ = f.cache.Close() })
	return f
}

func TestCached_CancelledContextStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.api.OrderDetails(ctx, admin, "o1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, ok, _ := f.cache.Get(context.Background(), cache.TagOrderDetails, "o1"); ok {
		t.Fatal("cancelled request left a cache entry")
	}
}

func TestAuditTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.api.UpdateOrderStatus(ctx, chef1, "o1", models.StatusCooking); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}

	if _, err := f.api.AuditTrail(ctx, chef1, "o1", 10); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin err = %v", err)
	}
	logs, err := f.api.AuditTrail(ctx, admin, "o1", 10)
	if err != nil {
		t.Fatalf("AuditTrail: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != "UpdateOrderStatus" || logs[0].ActorID != "u-chef1" {
		t.Fatalf("logs = %+v", logs)
	}
}

func TestCached_LoadRacingWriteIsNotStored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entered, release := f.db.pauseAfter("select:orders")
	done := make(chan error, 1)
	go func() {
		_, err := f.api.OrderDetails(ctx, admin, "o1")
		done <- err
	}()

	<-entered
	if _, err := f.api.UpdateOrderStatus(ctx, admin, "o1", models.StatusDelivered); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("OrderDetails: %v", err)
	}

	got, err := f.api.OrderDetails(ctx, admin, "o1")
	if err != nil {
		t.Fatalf("OrderDetails: %v", err)
	}
	if got.Status != models.StatusDelivered {
		t.Fatalf("status = %s, want %s", got.Status, models.StatusDelivered)
	}
}
