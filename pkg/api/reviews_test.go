package api

import (
	"context"
	"errors"
	"testing"
)

func TestReviews(t *testing.T) {
	f := newFixture(t)

	got, err := f.api.Reviews(context.Background())
	if err != nil {
		t.Fatalf("Reviews: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r2" || got[1].ID != "r1" {
		t.Fatalf("reviews = %+v", got)
	}

	r1 := got[1]
	if r1.Customer == nil || r1.Customer.Name != "Bola" {
		t.Fatalf("r1 customer = %+v", r1.Customer)
	}
	if r1.Cooker == nil || r1.Cooker.Name != "Rosa" || r1.Cooker.KitchenName != "Mama Rosa's Kitchen" {
		t.Fatalf("r1 cooker = %+v", r1.Cooker)
	}

	r2 := got[0]
	if r2.Cooker != nil {
		t.Fatalf("r2 cooker = %+v, want nil for unknown chef", r2.Cooker)
	}
	if r2.Customer == nil || r2.Customer.Name != "Chen" {
		t.Fatalf("r2 customer = %+v", r2.Customer)
	}
}

func TestReviews_CookerFetchDegrades(t *testing.T) {
	f := newFixture(t)
	f.db.failOn("select:cookers", "too many connections")

	got, err := f.api.Reviews(context.Background())
	if err != nil {
		t.Fatalf("Reviews: %v", err)
	}
	if len(got) != 2 || got[0].Cooker != nil || got[1].Cooker != nil {
		t.Fatalf("reviews = %+v", got)
	}
}

func TestReviews_ReviewFetchFails(t *testing.T) {
	f := newFixture(t)
	f.db.failOn("select:reviews", "relation \"reviews\" does not exist")

	var be *BackendError
	if _, err := f.api.Reviews(context.Background()); !errors.As(err, &be) {
		t.Fatalf("err = %v, want *BackendError", err)
	}
}

func TestCreateReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.api.Reviews(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := f.api.CreateReview(ctx, customer, ReviewInput{CookerID: "u-chef2", Rating: 9}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("rating err = %v", err)
	}
	created, err := f.api.CreateReview(ctx, customer, ReviewInput{CookerID: "u-chef2", Rating: 4, Comment: " Great dal "})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if created.CustomerID != "cu1" || created.Comment != "Great dal" {
		t.Fatalf("review = %+v", created)
	}

	got, err := f.api.Reviews(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].ID != created.ID || got[0].Cooker == nil || got[0].Cooker.KitchenName != "Spice Route" {
		t.Fatalf("reviews = %+v", got)
	}
}
