package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/homecook/pkg/auth"
	"github.com/example/homecook/pkg/cache"
	"github.com/example/homecook/pkg/events"
	"github.com/example/homecook/pkg/models"
	"github.com/example/homecook/pkg/notify"
	"github.com/example/homecook/pkg/payment"
	"github.com/example/homecook/pkg/table"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// OrderDetails is an order with its items and optional delivery.
type OrderDetails struct {
	models.Order
	Items    []models.OrderItem `json:"items"`
	Delivery *models.Delivery   `json:"delivery"`
}

// CookerOrder is one row of a chef's order list.
type CookerOrder struct {
	models.Order
	Items    []models.OrderItem `json:"items"`
	Customer *models.Profile    `json:"customer"`
}

type DeleteResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type OrderLine struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderInput struct {
	CookerID     string      `json:"cooker_id" binding:"required"`
	Items        []OrderLine `json:"items" binding:"required,min=1,dive"`
	Address      string      `json:"address"`
	PaymentToken string      `json:"payment_token"`
}

var (
	itemMenu = table.Relation{Name: "menu_item", Table: "menu_items", LocalKey: "menu_item_id"}

	orderItems = table.Relation{
		Name: "items", Table: "order_items", LocalKey: "id", ForeignKey: "order_id",
		Many: true, Nested: []table.Relation{itemMenu},
	}
	orderDelivery = table.Relation{Name: "delivery", Table: "deliveries", LocalKey: "id", ForeignKey: "order_id"}

	newestFirst = []table.Sort{{Column: "created_at", Desc: true}}
)

// OrderDetails returns one order with its items and delivery. Customers and
// chefs only see their own orders.
func (e *Endpoints) OrderDetails(ctx context.Context, p *auth.Principal, orderID string) (*OrderDetails, error) {
	if err := require(p); err != nil {
		return nil, err
	}
	details, err := cached(ctx, e, cache.TagOrderDetails, orderID, func(ctx context.Context) (*OrderDetails, bool, error) {
		return e.loadOrderDetails(ctx, orderID)
	})
	if err != nil {
		return nil, err
	}
	if !canSeeOrder(p, &details.Order) {
		return nil, ErrNotFound
	}
	return details, nil
}

func (e *Endpoints) loadOrderDetails(ctx context.Context, orderID string) (*OrderDetails, bool, error) {
	rows, err := e.db.Select(ctx, "orders", table.Query{
		Filters: []table.Filter{table.Eq("id", orderID)},
		Limit:   1,
	})
	if err != nil {
		return nil, false, backendError(ctx, err)
	}
	order, err := decodeOne[models.Order](ctx, rows)
	if err != nil {
		return nil, false, err
	}

	var (
		items            []models.OrderItem
		delivery         *models.Delivery
		itemsOK, delivOK bool
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		items, itemsOK = e.orderItems(ctx, table.Eq("order_id", order.ID))
	})
	wg.Go(func() {
		delivery, delivOK = e.delivery(ctx, order.ID)
	})
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	return &OrderDetails{
		Order:    *order,
		Items:    itemsOf(groupItems(items), order.ID),
		Delivery: delivery,
	}, itemsOK && delivOK, nil
}

// CookerOrders lists the signed-in chef's orders, newest first, each with its
// items and the customer's profile. Items and customers are fetched in one
// batch each regardless of how many orders there are.
func (e *Endpoints) CookerOrders(ctx context.Context, p *auth.Principal) ([]CookerOrder, error) {
	if err := require(p, models.RoleCooker); err != nil {
		return nil, err
	}
	return cached(ctx, e, cache.TagCookerOrders, p.UserID, func(ctx context.Context) ([]CookerOrder, bool, error) {
		rows, err := e.db.Select(ctx, "orders", table.Query{
			Filters: []table.Filter{table.Eq("cooker_id", p.UserID)},
			Sort:    newestFirst,
		})
		if err != nil {
			return nil, false, backendError(ctx, err)
		}
		orders, err := decodeAll[models.Order](ctx, rows)
		if err != nil {
			return nil, false, err
		}

		out := make([]CookerOrder, 0, len(orders))
		if len(orders) == 0 {
			return out, true, nil
		}

		orderIDs := make([]string, 0, len(orders))
		customerIDs := make([]string, 0, len(orders))
		seen := make(map[string]struct{}, len(orders))
		for _, o := range orders {
			orderIDs = append(orderIDs, o.ID)
			if _, dup := seen[o.CustomerID]; !dup {
				seen[o.CustomerID] = struct{}{}
				customerIDs = append(customerIDs, o.CustomerID)
			}
		}

		var (
			items                []models.OrderItem
			customers            map[string]models.Profile
			itemsOK, customersOK bool
		)
		var wg conc.WaitGroup
		wg.Go(func() {
			items, itemsOK = e.orderItems(ctx, table.In("order_id", orderIDs))
		})
		wg.Go(func() {
			customers, customersOK = e.profiles(ctx, customerIDs)
		})
		wg.Wait()
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		byOrder := groupItems(items)
		for _, o := range orders {
			co := CookerOrder{Order: o, Items: itemsOf(byOrder, o.ID)}
			if prof, ok := customers[o.CustomerID]; ok {
				co.Customer = &prof
			}
			out = append(out, co)
		}
		return out, itemsOK && customersOK, nil
	})
}

// CustomerOrders lists the signed-in customer's own orders, newest first.
func (e *Endpoints) CustomerOrders(ctx context.Context, p *auth.Principal) ([]OrderDetails, error) {
	if err := require(p); err != nil {
		return nil, err
	}
	return cached(ctx, e, cache.TagOrders, p.UserID, func(ctx context.Context) ([]OrderDetails, bool, error) {
		rows, err := e.db.Select(ctx, "orders", table.Query{
			Filters:   []table.Filter{table.Eq("customer_id", p.UserID)},
			Sort:      newestFirst,
			Relations: []table.Relation{orderItems, orderDelivery},
		})
		if err != nil {
			return nil, false, backendError(ctx, err)
		}
		orders, err := decodeAll[OrderDetails](ctx, rows)
		if err != nil {
			return nil, false, err
		}
		return orders, true, nil
	})
}

// UpdateOrderStatus sets an order's status and returns the updated order.
// Chefs can only move their own orders.
func (e *Endpoints) UpdateOrderStatus(ctx context.Context, p *auth.Principal, orderID string, status models.OrderStatus) (*models.Order, error) {
	if err := require(p, models.RoleCooker, models.RoleDelivery, models.RoleAdmin); err != nil {
		return nil, err
	}

	rows, err := e.db.Update(ctx, "orders", table.Row{"status": string(status)}, e.orderScope(p, orderID)...)
	if err != nil {
		return nil, backendError(ctx, err)
	}
	order, err := decodeOne[models.Order](ctx, rows)
	if err != nil {
		return nil, err
	}

	e.written(ctx, "UpdateOrderStatus", p, order.ID, bson.M{"status": string(status)})
	e.publish(ctx, events.New(events.OrderStatusChanged, order.ID, p.UserID, map[string]any{
		"status":      string(status),
		"customer_id": order.CustomerID,
	}))
	e.notifier.Publish(notify.LevelInfo, "Order updated", fmt.Sprintf("Order %s is now %s", order.ID, status))
	e.logger.Info("Order status updated", zap.String("order_id", order.ID), zap.String("status", string(status)))
	return order, nil
}

// DeleteOrder removes an order's items and then the order. The two deletes
// are separate backend calls: if the items delete fails the order is left
// untouched; if the order delete fails after the items are gone the returned
// *BackendError carries OrphanedOrderID.
func (e *Endpoints) DeleteOrder(ctx context.Context, p *auth.Principal, orderID string) (*DeleteResult, error) {
	if err := require(p, models.RoleCooker, models.RoleAdmin); err != nil {
		return nil, err
	}

	rows, err := e.db.Select(ctx, "orders", table.Query{Filters: e.orderScope(p, orderID), Limit: 1})
	if err != nil {
		return nil, backendError(ctx, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	if _, err := e.db.Delete(ctx, "order_items", table.Eq("order_id", orderID)); err != nil {
		return nil, backendError(ctx, err)
	}

	// Items are gone from here on; any failure leaves the order orphaned.
	// Payments stay for the money trail.
	if _, err := e.db.Delete(ctx, "deliveries", table.Eq("order_id", orderID)); err != nil {
		e.invalidate(ctx, "DeleteOrder")
		e.logger.Error("Order left without items", zap.String("order_id", orderID), zap.Error(err))
		return nil, orphaned(orderID, err)
	}

	deleted, err := e.db.Delete(ctx, "orders", table.Eq("id", orderID))
	if err != nil {
		e.invalidate(ctx, "DeleteOrder")
		e.logger.Error("Order left without items", zap.String("order_id", orderID), zap.Error(err))
		return nil, orphaned(orderID, err)
	}
	if len(deleted) == 0 {
		// deleted concurrently between the lookup and here
		e.invalidate(ctx, "DeleteOrder")
		return nil, ErrNotFound
	}

	e.written(ctx, "DeleteOrder", p, orderID, bson.M{"deleted": true})
	e.publish(ctx, events.New(events.OrderDeleted, orderID, p.UserID, nil))
	e.logger.Info("Order deleted", zap.String("order_id", orderID))
	return &DeleteResult{Success: true, ID: orderID}, nil
}

// PlaceOrder creates an order for the signed-in customer. Prices are taken
// from the menu at order time and every item must come from the same chef.
func (e *Endpoints) PlaceOrder(ctx context.Context, p *auth.Principal, in PlaceOrderInput) (*OrderDetails, error) {
	if err := require(p, models.RoleCustomer); err != nil {
		return nil, err
	}
	if in.CookerID == "" {
		return nil, invalid("cooker_id is required")
	}
	if len(in.Items) == 0 {
		return nil, invalid("order has no items")
	}

	quantities := make(map[string]int, len(in.Items))
	var menuIDs []string
	for _, line := range in.Items {
		if line.MenuItemID == "" || line.Quantity <= 0 {
			return nil, invalid("every item needs a menu_item_id and a positive quantity")
		}
		if _, ok := quantities[line.MenuItemID]; !ok {
			menuIDs = append(menuIDs, line.MenuItemID)
		}
		quantities[line.MenuItemID] += line.Quantity
	}

	rows, err := e.db.Select(ctx, "menu_items", table.Query{Filters: []table.Filter{table.In("id", menuIDs)}})
	if err != nil {
		return nil, backendError(ctx, err)
	}
	menu, err := decodeAll[models.MenuItem](ctx, rows)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	now := e.now().UTC()
	order := models.Order{
		ID:         uuid.NewString(),
		CustomerID: p.UserID,
		CookerID:   in.CookerID,
		Status:     models.StatusPlaced,
		Total:      decimal.Zero,
		CreatedAt:  now,
	}
	items := make([]models.OrderItem, 0, len(menuIDs))
	for _, id := range menuIDs {
		m, ok := byID[id]
		if !ok {
			return nil, invalid("menu item %s not found", id)
		}
		if m.CookerID != in.CookerID {
			return nil, invalid("menu item %s is not from this kitchen", id)
		}
		qty := quantities[id]
		order.Total = order.Total.Add(m.Price.Mul(decimal.NewFromInt(int64(qty))))
		items = append(items, models.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    order.ID,
			MenuItemID: id,
			Quantity:   qty,
			Price:      m.Price,
			MenuItem:   &m,
		})
	}

	var paid *payment.Result
	if in.PaymentToken != "" {
		paid, err = e.payment.Confirm(ctx, in.PaymentToken, order.Total)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
		}
	}

	if _, err := e.db.Insert(ctx, "orders", table.Row{
		"id": order.ID, "customer_id": order.CustomerID, "cooker_id": order.CookerID,
		"status": string(order.Status), "total": order.Total, "created_at": order.CreatedAt,
	}); err != nil {
		return nil, backendError(ctx, err)
	}

	// from here on the order row exists, so caches are dropped even on failure
	itemRows := make([]table.Row, 0, len(items))
	for _, it := range items {
		itemRows = append(itemRows, table.Row{
			"id": it.ID, "order_id": it.OrderID, "menu_item_id": it.MenuItemID,
			"quantity": it.Quantity, "price": it.Price,
		})
	}
	if _, err := e.db.Insert(ctx, "order_items", itemRows...); err != nil {
		e.invalidate(ctx, "PlaceOrder")
		return nil, backendError(ctx, err)
	}

	var delivery *models.Delivery
	if in.Address != "" {
		delivery = &models.Delivery{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			Address:   in.Address,
			Status:    "pending",
			CreatedAt: now,
		}
		if _, err := e.db.Insert(ctx, "deliveries", table.Row{
			"id": delivery.ID, "order_id": delivery.OrderID, "courier_id": "",
			"address": delivery.Address, "status": delivery.Status, "created_at": delivery.CreatedAt,
		}); err != nil {
			e.invalidate(ctx, "PlaceOrder")
			return nil, backendError(ctx, err)
		}
	}

	if paid != nil {
		if _, err := e.db.Insert(ctx, "payments", table.Row{
			"id": uuid.NewString(), "order_id": order.ID, "token": paid.Token,
			"amount": paid.Amount, "status": paid.Status, "created_at": now,
		}); err != nil {
			e.invalidate(ctx, "PlaceOrder")
			return nil, backendError(ctx, err)
		}
	}

	e.written(ctx, "PlaceOrder", p, order.ID, bson.M{
		"cooker_id": order.CookerID,
		"total":     order.Total.String(),
		"items":     len(items),
		"paid":      paid != nil,
	})
	e.publish(ctx, events.New(events.OrderPlaced, order.ID, p.UserID, map[string]any{
		"cooker_id": order.CookerID,
		"total":     order.Total.String(),
	}))
	e.notifier.Publish(notify.LevelInfo, "Order placed", fmt.Sprintf("Order %s placed, total %s", order.ID, order.Total.StringFixed(2)))
	e.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("customer_id", order.CustomerID),
		zap.String("total", order.Total.String()))

	return &OrderDetails{Order: order, Items: items, Delivery: delivery}, nil
}

// orderScope restricts chefs to their own orders.
func (e *Endpoints) orderScope(p *auth.Principal, orderID string) []table.Filter {
	filters := []table.Filter{table.Eq("id", orderID)}
	if p.Role == models.RoleCooker {
		filters = append(filters, table.Eq("cooker_id", p.UserID))
	}
	return filters
}

func canSeeOrder(p *auth.Principal, o *models.Order) bool {
	switch p.Role {
	case models.RoleCustomer:
		return o.CustomerID == p.UserID
	case models.RoleCooker:
		return o.CookerID == p.UserID
	}
	return true
}

// orderItems fetches items with their menu item. A failure degrades to no
// items; the bool reports whether the fetch succeeded.
func (e *Endpoints) orderItems(ctx context.Context, f table.Filter) ([]models.OrderItem, bool) {
	rows, err := e.db.Select(ctx, "order_items", table.Query{
		Filters:   []table.Filter{f},
		Sort:      []table.Sort{{Column: "id"}},
		Relations: []table.Relation{itemMenu},
	})
	if err == nil {
		var items []models.OrderItem
		if items, err = decodeAll[models.OrderItem](ctx, rows); err == nil {
			return items, true
		}
	}
	if ctx.Err() == nil {
		e.logger.Warn("Order items unavailable", zap.String("filter", f.Column), zap.Error(err))
	}
	return []models.OrderItem{}, false
}

func (e *Endpoints) delivery(ctx context.Context, orderID string) (*models.Delivery, bool) {
	rows, err := e.db.Select(ctx, "deliveries", table.Query{
		Filters: []table.Filter{table.Eq("order_id", orderID)},
		Limit:   1,
	})
	if err != nil {
		if ctx.Err() == nil {
			e.logger.Warn("Delivery unavailable", zap.String("order_id", orderID), zap.Error(err))
		}
		return nil, false
	}
	d, err := decodeOne[models.Delivery](ctx, rows)
	if errors.Is(err, ErrNotFound) {
		return nil, true
	}
	if err != nil {
		e.logger.Warn("Delivery unreadable", zap.String("order_id", orderID), zap.Error(err))
		return nil, false
	}
	return d, true
}

// profiles fetches users by id in one batch. A failure degrades to no
// profiles.
func (e *Endpoints) profiles(ctx context.Context, ids []string) (map[string]models.Profile, bool) {
	out := make(map[string]models.Profile, len(ids))
	rows, err := e.db.Select(ctx, "users", table.Query{Filters: []table.Filter{table.In("id", ids)}})
	if err == nil {
		var users []models.User
		if users, err = decodeAll[models.User](ctx, rows); err == nil {
			for _, u := range users {
				out[u.ID] = u.Profile()
			}
			return out, true
		}
	}
	if ctx.Err() == nil {
		e.logger.Warn("User profiles unavailable", zap.Int("count", len(ids)), zap.Error(err))
	}
	return out, false
}

// groupItems buckets items by order so an order only ever carries its own.
func groupItems(items []models.OrderItem) map[string][]models.OrderItem {
	out := make(map[string][]models.OrderItem)
	for _, it := range items {
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out
}

func itemsOf(byOrder map[string][]models.OrderItem, orderID string) []models.OrderItem {
	if items, ok := byOrder[orderID]; ok {
		return items
	}
	return []models.OrderItem{}
}
