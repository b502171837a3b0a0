package api

import (
	"context"
	"strings"
	"time"

	"github.com/example/homecook/pkg/auth"
	"github.com/example/homecook/pkg/cache"
	"github.com/example/homecook/pkg/models"
	"github.com/example/homecook/pkg/table"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type CookerProfile struct {
	models.Profile
	KitchenName string `json:"kitchen_name"`
}

// ReviewView is a review with the reviewer's and the chef's profiles.
type ReviewView struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	CookerID   string          `json:"cooker_id"`
	Rating     int             `json:"rating"`
	Comment    string          `json:"comment"`
	CreatedAt  time.Time       `json:"created_at"`
	Customer   *models.Profile `json:"customer"`
	Cooker     *CookerProfile  `json:"cooker"`
}

type ReviewInput struct {
	CookerID string `json:"cooker_id" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
	Comment  string `json:"comment"`
}

// reviews reach their customer's user through customers; there is no
// relation from reviews to cookers, so chefs are fetched separately and
// matched on cookers.user_id.
var reviewCustomer = table.Relation{
	Name: "customer", Table: "customers", LocalKey: "customer_id",
	Nested: []table.Relation{{Name: "user", Table: "users", LocalKey: "user_id"}},
}

// Reviews lists every review, newest first.
func (e *Endpoints) Reviews(ctx context.Context) ([]ReviewView, error) {
	return cached(ctx, e, cache.TagReviews, "all", func(ctx context.Context) ([]ReviewView, bool, error) {
		var (
			reviews   []models.Review
			reviewErr error
			cookers   map[string]CookerProfile
			cookersOK bool
		)
		var wg conc.WaitGroup
		wg.Go(func() {
			rows, err := e.db.Select(ctx, "reviews", table.Query{
				Sort:      newestFirst,
				Relations: []table.Relation{reviewCustomer},
			})
			if err != nil {
				reviewErr = backendError(ctx, err)
				return
			}
			reviews, reviewErr = decodeAll[models.Review](ctx, rows)
		})
		wg.Go(func() {
			cookers, cookersOK = e.cookerProfiles(ctx)
		})
		wg.Wait()
		if reviewErr != nil {
			return nil, false, reviewErr
		}
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		out := make([]ReviewView, 0, len(reviews))
		for _, r := range reviews {
			v := ReviewView{
				ID:         r.ID,
				CustomerID: r.CustomerID,
				CookerID:   r.CookerID,
				Rating:     r.Rating,
				Comment:    r.Comment,
				CreatedAt:  r.CreatedAt,
			}
			if r.Customer != nil && r.Customer.User != nil {
				prof := r.Customer.User.Profile()
				v.Customer = &prof
			}
			if c, ok := cookers[r.CookerID]; ok {
				v.Cooker = &c
			}
			out = append(out, v)
		}
		return out, cookersOK, nil
	})
}

// cookerProfiles maps chef user ids to their kitchen profile. A failure
// degrades to no profiles.
func (e *Endpoints) cookerProfiles(ctx context.Context) (map[string]CookerProfile, bool) {
	out := make(map[string]CookerProfile)
	rows, err := e.db.Select(ctx, "cookers", table.Query{Relations: []table.Relation{cookerUser}})
	if err == nil {
		var cookers []models.Cooker
		if cookers, err = decodeAll[models.Cooker](ctx, rows); err == nil {
			for _, c := range cookers {
				cp := CookerProfile{KitchenName: c.KitchenName}
				if c.User != nil {
					cp.Profile = c.User.Profile()
				} else {
					cp.Profile = models.Profile{ID: c.UserID}
				}
				out[c.UserID] = cp
			}
			return out, true
		}
	}
	if ctx.Err() == nil {
		e.logger.Warn("Cooker profiles unavailable", zap.Error(err))
	}
	return out, false
}

// CreateReview records the signed-in customer's review of a chef.
func (e *Endpoints) CreateReview(ctx context.Context, p *auth.Principal, in ReviewInput) (*models.Review, error) {
	if err := require(p, models.RoleCustomer); err != nil {
		return nil, err
	}
	if in.CookerID == "" {
		return nil, invalid("cooker_id is required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, invalid("rating must be between 1 and 5")
	}

	rows, err := e.db.Select(ctx, "customers", table.Query{
		Filters: []table.Filter{table.Eq("user_id", p.UserID)},
		Limit:   1,
	})
	if err != nil {
		return nil, backendError(ctx, err)
	}
	if len(rows) == 0 {
		return nil, invalid("no customer profile for this account")
	}
	customer, err := decodeOne[models.Customer](ctx, rows)
	if err != nil {
		return nil, err
	}

	review := models.Review{
		ID:         uuid.NewString(),
		CustomerID: customer.ID,
		CookerID:   in.CookerID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
		CreatedAt:  e.now().UTC(),
	}
	if _, err := e.db.Insert(ctx, "reviews", table.Row{
		"id": review.ID, "customer_id": review.CustomerID, "cooker_id": review.CookerID,
		"rating": review.Rating, "comment": review.Comment, "created_at": review.CreatedAt,
	}); err != nil {
		return nil, backendError(ctx, err)
	}

	e.written(ctx, "CreateReview", p, review.ID, bson.M{"cooker_id": review.CookerID, "rating": review.Rating})
	return &review, nil
}
