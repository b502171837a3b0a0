package api

import (
	"context"
	"errors"
	"testing"

	"github.com/example/homecook/pkg/cache"
	"github.com/example/homecook/pkg/models"
)

func TestUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.api.Users(ctx, customer); !errors.Is(err, ErrForbidden) {
		t.Fatalf("customer err = %v", err)
	}
	users, err := f.api.Users(ctx, admin)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 7 {
		t.Fatalf("users = %d", len(users))
	}

	updated, err := f.api.UpdateUserRole(ctx, admin, "u-cust2", models.RoleDelivery)
	if err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if updated.Role != models.RoleDelivery {
		t.Fatalf("role = %s", updated.Role)
	}
	if _, err := f.api.UpdateUserRole(ctx, admin, "u-cust2", "overlord"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad role err = %v", err)
	}

	users, err = f.api.Users(ctx, admin)
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range users {
		if u.ID == "u-cust2" && u.Role != models.RoleDelivery {
			t.Fatalf("users list served stale role %s", u.Role)
		}
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.api.DeleteUser(ctx, admin, admin.UserID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("self delete err = %v", err)
	}
	res, err := f.api.DeleteUser(ctx, admin, "u-cust2")
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if !res.Success || res.ID != "u-cust2" {
		t.Fatalf("result = %+v", res)
	}
	for _, c := range f.db.Rows("customers") {
		if c["user_id"] == "u-cust2" {
			t.Fatal("customer profile left behind")
		}
	}
	if _, err := f.api.DeleteUser(ctx, admin, "u-cust2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.api.CreateReport(ctx, customer, ReportInput{TargetType: "planet", TargetID: "x", Reason: "r"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad target err = %v", err)
	}
	report, err := f.api.CreateReport(ctx, customer, ReportInput{
		TargetType: models.TargetOrder, TargetID: "o1", Reason: "Arrived cold", OrderID: "o1",
	})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if report.Status != models.ReportOpen || report.ReporterID != customer.UserID {
		t.Fatalf("report = %+v", report)
	}

	if _, err := f.api.Reports(ctx, customer); !errors.Is(err, ErrForbidden) {
		t.Fatalf("customer err = %v", err)
	}
	reports, err := f.api.Reports(ctx, admin)
	if err != nil {
		t.Fatalf("Reports: %v", err)
	}
	if len(reports) != 1 || reports[0].Reporter == nil || reports[0].Reporter.Name != "Bola" {
		t.Fatalf("reports = %+v", reports)
	}

	updated, err := f.api.UpdateReportStatus(ctx, admin, report.ID, models.ReportResolved)
	if err != nil {
		t.Fatalf("UpdateReportStatus: %v", err)
	}
	if updated.Status != models.ReportResolved {
		t.Fatalf("status = %s", updated.Status)
	}
	reports, err = f.api.Reports(ctx, admin)
	if err != nil {
		t.Fatal(err)
	}
	if reports[0].Status != models.ReportResolved {
		t.Fatalf("reports served stale status %s", reports[0].Status)
	}
}

func TestDeleteUser_DropsJoinedAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.api.LandingMenu(ctx)
	if err != nil {
		t.Fatalf("LandingMenu: %v", err)
	}
	if len(before) != 9 {
		t.Fatalf("landing items = %d", len(before))
	}
	if _, err := f.api.CookerOrders(ctx, chef1); err != nil {
		t.Fatalf("CookerOrders: %v", err)
	}

	if _, err := f.api.DeleteUser(ctx, admin, "u-chef2"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, ok, _ := f.cache.Get(ctx, cache.TagMenuItems, "landing"); ok {
		t.Fatal("landing menu survived a user delete")
	}
	if _, ok, _ := f.cache.Get(ctx, cache.TagCookerOrders, chef1.UserID); ok {
		t.Fatal("chef order list survived a user delete")
	}

	after, err := f.api.LandingMenu(ctx)
	if err != nil {
		t.Fatalf("LandingMenu: %v", err)
	}
	if len(after) != 6 {
		t.Fatalf("landing items after delete = %d, want 6", len(after))
	}
	for _, item := range after {
		if item.CookerID == "u-chef2" {
			t.Fatalf("deleted chef still on the landing page: %+v", item)
		}
	}
}

func TestUpdateUserRole_DropsJoinedAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.api.LandingMenu(ctx); err != nil {
		t.Fatalf("LandingMenu: %v", err)
	}
	if _, err := f.api.UpdateUserRole(ctx, admin, "u-chef1", models.RoleCustomer); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if _, ok, _ := f.cache.Get(ctx, cache.TagMenuItems, "landing"); ok {
		t.Fatal("landing menu survived a role change")
	}
}
