package api

import (
	"context"
	"errors"
	"testing"

	"github.com/example/homecook/pkg/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestLandingMenu(t *testing.T) {
	f := newFixture(t)

	got, err := f.api.LandingMenu(context.Background())
	if err != nil {
		t.Fatalf("LandingMenu: %v", err)
	}
	if len(got) != 9 {
		t.Fatalf("len = %d, want 3 kitchens x 3 items", len(got))
	}

	wantChefs := []string{"u-chef2", "u-chef2", "u-chef2", "u-chef1", "u-chef1", "u-chef1", "u-chef3", "u-chef3", "u-chef3"}
	for i, it := range got {
		if it.CookerID != wantChefs[i] {
			t.Fatalf("item %d from %s, want %s", i, it.CookerID, wantChefs[i])
		}
		if it.Chef == nil || it.Chef.ID != it.CookerID || it.KitchenName == "" {
			t.Fatalf("item %d chef = %+v kitchen = %q", i, it.Chef, it.KitchenName)
		}
		if it.KitchenName == "Hidden Place" {
			t.Fatal("non-featured kitchen in landing menu")
		}
	}
	if got[0].KitchenName != "Spice Route" || got[0].Chef.Name != "Ravi" {
		t.Fatalf("first item = %+v", got[0])
	}
	if n := f.db.selects(); n != 2 {
		t.Fatalf("fetches = %d, want cookers + menu items", n)
	}
}

func TestLandingMenu_Cap(t *testing.T) {
	f := newFixture(t)
	f.api.landing = config.LandingConfig{FeaturedKitchens: []string{"Green Bowl", "Green Bowl"}, PerKitchenCap: 4}

	got, err := f.api.LandingMenu(context.Background())
	if err != nil {
		t.Fatalf("LandingMenu: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want cap of 4 from one kitchen", len(got))
	}
}

func TestLandingMenu_NoFeaturedMatch(t *testing.T) {
	db := newCountingStore()
	seed(db)
	api := New(db, Options{
		Landing: config.LandingConfig{FeaturedKitchens: []string{"Nowhere"}, PerKitchenCap: 3},
		Logger:  zap.NewNop(),
	})

	got, err := api.LandingMenu(context.Background())
	if err != nil {
		t.Fatalf("LandingMenu: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got %#v, want empty list", got)
	}
	if n := db.count("select:menu_items"); n != 0 {
		t.Fatalf("menu items fetched %d times", n)
	}
}

func TestMenuItemLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.api.MenuItems(ctx, "u-chef1")
	if err != nil {
		t.Fatalf("MenuItems: %v", err)
	}

	created, err := f.api.CreateMenuItem(ctx, chef1, MenuItemInput{
		Title: "Egusi", Price: decimal.RequireFromString("11.50"), Category: "soups",
	})
	if err != nil {
		t.Fatalf("CreateMenuItem: %v", err)
	}
	after, err := f.api.MenuItems(ctx, "u-chef1")
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before)+1 || after[0].ID != created.ID {
		t.Fatalf("menu = %+v, want new item first", after)
	}

	if _, err := f.api.UpdateMenuItem(ctx, chef2, created.ID, MenuItemInput{Title: "Stolen", Price: decimal.NewFromInt(1)}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other chef update err = %v", err)
	}
	updated, err := f.api.UpdateMenuItem(ctx, chef1, created.ID, MenuItemInput{Title: "Egusi soup", Price: decimal.NewFromInt(12)})
	if err != nil {
		t.Fatalf("UpdateMenuItem: %v", err)
	}
	if updated.Title != "Egusi soup" || !updated.Price.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("updated = %+v", updated)
	}

	if _, err := f.api.DeleteMenuItem(ctx, chef1, created.ID); err != nil {
		t.Fatalf("DeleteMenuItem: %v", err)
	}
	if _, err := f.api.DeleteMenuItem(ctx, chef1, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestCreateMenuItem_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.api.CreateMenuItem(ctx, chef1, MenuItemInput{Title: " ", Price: decimal.NewFromInt(3)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank title err = %v", err)
	}
	if _, err := f.api.CreateMenuItem(ctx, chef1, MenuItemInput{Title: "Free", Price: decimal.Zero}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero price err = %v", err)
	}
	if _, err := f.api.CreateMenuItem(ctx, customer, MenuItemInput{Title: "x", Price: decimal.NewFromInt(1)}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("customer err = %v", err)
	}
}
