package api

import (
	"context"
	"strings"

	"github.com/example/homecook/pkg/auth"
	"github.com/example/homecook/pkg/cache"
	"github.com/example/homecook/pkg/models"
	"github.com/example/homecook/pkg/table"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// LandingItem is a menu item shown on the landing page with its chef.
type LandingItem struct {
	models.MenuItem
	KitchenName string          `json:"kitchen_name"`
	Chef        *models.Profile `json:"chef"`
}

type MenuItemInput struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
}

func (in MenuItemInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return invalid("title is required")
	}
	if !in.Price.IsPositive() {
		return invalid("price must be positive")
	}
	return nil
}

var cookerUser = table.Relation{Name: "user", Table: "users", LocalKey: "user_id"}

// LandingMenu previews the featured kitchens: up to PerKitchenCap items from
// each, concatenated in the configured kitchen order.
func (e *Endpoints) LandingMenu(ctx context.Context) ([]LandingItem, error) {
	return cached(ctx, e, cache.TagMenuItems, "landing", func(ctx context.Context) ([]LandingItem, bool, error) {
		out := []LandingItem{}
		if len(e.landing.FeaturedKitchens) == 0 {
			return out, true, nil
		}

		rows, err := e.db.Select(ctx, "cookers", table.Query{
			Filters:   []table.Filter{table.In("kitchen_name", e.landing.FeaturedKitchens)},
			Relations: []table.Relation{cookerUser},
		})
		if err != nil {
			return nil, false, backendError(ctx, err)
		}
		cookers, err := decodeAll[models.Cooker](ctx, rows)
		if err != nil {
			return nil, false, err
		}
		if len(cookers) == 0 {
			return out, true, nil
		}

		chefIDs := make([]string, 0, len(cookers))
		byChef := make(map[string]models.Cooker, len(cookers))
		for _, c := range cookers {
			chefIDs = append(chefIDs, c.UserID)
			byChef[c.UserID] = c
		}

		rows, err = e.db.Select(ctx, "menu_items", table.Query{
			Filters: []table.Filter{table.In("cooker_id", chefIDs)},
			Sort:    []table.Sort{{Column: "created_at"}, {Column: "id"}},
		})
		if err != nil {
			return nil, false, backendError(ctx, err)
		}
		items, err := decodeAll[models.MenuItem](ctx, rows)
		if err != nil {
			return nil, false, err
		}

		byKitchen := make(map[string][]models.MenuItem)
		for _, it := range items {
			c := byChef[it.CookerID]
			byKitchen[c.KitchenName] = append(byKitchen[c.KitchenName], it)
		}

		for _, kitchen := range e.landing.FeaturedKitchens {
			picked := byKitchen[kitchen]
			if len(picked) > e.landing.PerKitchenCap {
				picked = picked[:e.landing.PerKitchenCap]
			}
			for _, it := range picked {
				c := byChef[it.CookerID]
				li := LandingItem{MenuItem: it, KitchenName: c.KitchenName}
				if c.User != nil {
					prof := c.User.Profile()
					li.Chef = &prof
				}
				out = append(out, li)
			}
			// a kitchen listed twice contributes once
			delete(byKitchen, kitchen)
		}
		return out, true, nil
	})
}

// MenuItems lists one chef's menu, newest first.
func (e *Endpoints) MenuItems(ctx context.Context, cookerID string) ([]models.MenuItem, error) {
	return cached(ctx, e, cache.TagMenuItems, "cooker:"+cookerID, func(ctx context.Context) ([]models.MenuItem, bool, error) {
		rows, err := e.db.Select(ctx, "menu_items", table.Query{
			Filters: []table.Filter{table.Eq("cooker_id", cookerID)},
			Sort:    newestFirst,
		})
		if err != nil {
			return nil, false, backendError(ctx, err)
		}
		items, err := decodeAll[models.MenuItem](ctx, rows)
		if err != nil {
			return nil, false, err
		}
		return items, true, nil
	})
}

func (e *Endpoints) CreateMenuItem(ctx context.Context, p *auth.Principal, in MenuItemInput) (*models.MenuItem, error) {
	if err := require(p, models.RoleCooker); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	item := models.MenuItem{
		ID:          uuid.NewString(),
		CookerID:    p.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Category:    in.Category,
		CreatedAt:   e.now().UTC(),
	}
	if _, err := e.db.Insert(ctx, "menu_items", table.Row{
		"id": item.ID, "cooker_id": item.CookerID, "title": item.Title,
		"description": item.Description, "price": item.Price, "image_url": item.ImageURL,
		"category": item.Category, "created_at": item.CreatedAt,
	}); err != nil {
		return nil, backendError(ctx, err)
	}

	e.written(ctx, "CreateMenuItem", p, item.ID, bson.M{"title": item.Title, "price": item.Price.String()})
	return &item, nil
}

// UpdateMenuItem replaces the editable fields of a chef's own menu item.
func (e *Endpoints) UpdateMenuItem(ctx context.Context, p *auth.Principal, id string, in MenuItemInput) (*models.MenuItem, error) {
	if err := require(p, models.RoleCooker, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	rows, err := e.db.Update(ctx, "menu_items", table.Row{
		"title": strings.TrimSpace(in.Title), "description": in.Description, "price": in.Price,
		"image_url": in.ImageURL, "category": in.Category,
	}, menuScope(p, id)...)
	if err != nil {
		return nil, backendError(ctx, err)
	}
	item, err := decodeOne[models.MenuItem](ctx, rows)
	if err != nil {
		return nil, err
	}

	e.written(ctx, "UpdateMenuItem", p, item.ID, bson.M{"title": item.Title, "price": item.Price.String()})
	return item, nil
}

func (e *Endpoints) DeleteMenuItem(ctx context.Context, p *auth.Principal, id string) (*DeleteResult, error) {
	if err := require(p, models.RoleCooker, models.RoleAdmin); err != nil {
		return nil, err
	}
	rows, err := e.db.Delete(ctx, "menu_items", menuScope(p, id)...)
	if err != nil {
		return nil, backendError(ctx, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	e.written(ctx, "DeleteMenuItem", p, id, nil)
	e.logger.Info("Menu item deleted", zap.String("menu_item_id", id))
	return &DeleteResult{Success: true, ID: id}, nil
}

func menuScope(p *auth.Principal, id string) []table.Filter {
	filters := []table.Filter{table.Eq("id", id)}
	if p.Role == models.RoleCooker {
		filters = append(filters, table.Eq("cooker_id", p.UserID))
	}
	return filters
}
