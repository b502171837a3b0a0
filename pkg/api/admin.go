package api

import (
	"context"
	"strings"

	"github.com/example/homecook/pkg/auth"
	"github.com/example/homecook/pkg/cache"
	"github.com/example/homecook/pkg/models"
	"github.com/example/homecook/pkg/table"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type ReportInput struct {
	TargetType models.ReportTarget `json:"target_type" binding:"required"`
	TargetID   string              `json:"target_id" binding:"required"`
	Reason     string              `json:"reason" binding:"required"`
	Details    string              `json:"details"`
	OrderID    string              `json:"order_id"`
}

// Users lists every account, newest first. Admin only.
func (e *Endpoints) Users(ctx context.Context, p *auth.Principal) ([]models.User, error) {
	if err := require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	return cached(ctx, e, cache.TagUsers, "all", func(ctx context.Context) ([]models.User, bool, error) {
		rows, err := e.db.Select(ctx, "users", table.Query{Sort: newestFirst})
		if err != nil {
			return nil, false, backendError(ctx, err)
		}
		users, err := decodeAll[models.User](ctx, rows)
		if err != nil {
			return nil, false, err
		}
		return users, true, nil
	})
}

func (e *Endpoints) UpdateUserRole(ctx context.Context, p *auth.Principal, userID string, role models.Role) (*models.User, error) {
	if err := require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, invalid("unknown role %q", role)
	}

	rows, err := e.db.Update(ctx, "users", table.Row{"role": string(role)}, table.Eq("id", userID))
	if err != nil {
		return nil, backendError(ctx, err)
	}
	user, err := decodeOne[models.User](ctx, rows)
	if err != nil {
		return nil, err
	}

	e.written(ctx, "UpdateUserRole", p, user.ID, bson.M{"role": string(role)})
	e.logger.Info("User role updated", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// DeleteUser removes an account with its credentials and profile rows.
// Admins cannot delete themselves.
func (e *Endpoints) DeleteUser(ctx context.Context, p *auth.Principal, userID string) (*DeleteResult, error) {
	if err := require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if userID == p.UserID {
		return nil, invalid("cannot delete your own account")
	}

	for _, tbl := range []string{"credentials", "customers", "cookers"} {
		if _, err := e.db.Delete(ctx, tbl, table.Eq("user_id", userID)); err != nil {
			return nil, backendError(ctx, err)
		}
	}
	rows, err := e.db.Delete(ctx, "users", table.Eq("id", userID))
	if err != nil {
		return nil, backendError(ctx, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	e.written(ctx, "DeleteUser", p, userID, nil)
	e.logger.Info("User deleted", zap.String("user_id", userID))
	return &DeleteResult{Success: true, ID: userID}, nil
}

// CreateReport files a report against any entity on behalf of the signed-in
// user.
func (e *Endpoints) CreateReport(ctx context.Context, p *auth.Principal, in ReportInput) (*models.Report, error) {
	if err := require(p); err != nil {
		return nil, err
	}
	if !in.TargetType.Valid() {
		return nil, invalid("unknown report target %q", in.TargetType)
	}
	if in.TargetID == "" || strings.TrimSpace(in.Reason) == "" {
		return nil, invalid("target_id and reason are required")
	}

	report := models.Report{
		ID:         uuid.NewString(),
		ReporterID: p.UserID,
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		Reason:     strings.TrimSpace(in.Reason),
		Details:    in.Details,
		OrderID:    in.OrderID,
		Status:     models.ReportOpen,
		CreatedAt:  e.now().UTC(),
	}
	if _, err := e.db.Insert(ctx, "reports", table.Row{
		"id": report.ID, "reporter_id": report.ReporterID, "target_type": string(report.TargetType),
		"target_id": report.TargetID, "reason": report.Reason, "details": report.Details,
		"order_id": report.OrderID, "status": string(report.Status), "created_at": report.CreatedAt,
	}); err != nil {
		return nil, backendError(ctx, err)
	}

	e.written(ctx, "CreateReport", p, report.ID, bson.M{
		"target_type": string(report.TargetType),
		"target_id":   report.TargetID,
	})
	return &report, nil
}

// Reports lists every report with its reporter, newest first. Admin only.
func (e *Endpoints) Reports(ctx context.Context, p *auth.Principal) ([]models.Report, error) {
	if err := require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	return cached(ctx, e, cache.TagReports, "all", func(ctx context.Context) ([]models.Report, bool, error) {
		rows, err := e.db.Select(ctx, "reports", table.Query{
			Sort:      newestFirst,
			Relations: []table.Relation{{Name: "reporter", Table: "users", LocalKey: "reporter_id"}},
		})
		if err != nil {
			return nil, false, backendError(ctx, err)
		}
		reports, err := decodeAll[models.Report](ctx, rows)
		if err != nil {
			return nil, false, err
		}
		return reports, true, nil
	})
}

func (e *Endpoints) UpdateReportStatus(ctx context.Context, p *auth.Principal, reportID string, status models.ReportStatus) (*models.Report, error) {
	if err := require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalid("unknown report status %q", status)
	}

	rows, err := e.db.Update(ctx, "reports", table.Row{"status": string(status)}, table.Eq("id", reportID))
	if err != nil {
		return nil, backendError(ctx, err)
	}
	report, err := decodeOne[models.Report](ctx, rows)
	if err != nil {
		return nil, err
	}

	e.written(ctx, "UpdateReportStatus", p, report.ID, bson.M{"status": string(status)})
	return report, nil
}
