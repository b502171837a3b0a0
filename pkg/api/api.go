// Package api holds the named query and mutation endpoints the view layer
// calls. Read endpoints aggregate several table fetches into one composite
// record and cache it under a tag; write endpoints invalidate the tags of the
// collections they touch.
package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/homecook/pkg/auth"
	"github.com/example/homecook/pkg/cache"
	"github.com/example/homecook/pkg/config"
	"github.com/example/homecook/pkg/events"
	"github.com/example/homecook/pkg/models"
	"github.com/example/homecook/pkg/notify"
	"github.com/example/homecook/pkg/payment"
	"github.com/example/homecook/pkg/repository"
	"github.com/example/homecook/pkg/table"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const serviceName = "homecook-api"

// Invalidates lists the tags each write endpoint drops.
var Invalidates = map[string][]string{
	"PlaceOrder":         {cache.TagOrders, cache.TagCookerOrders},
	"UpdateOrderStatus":  {cache.TagOrderDetails, cache.TagCookerOrders, cache.TagOrders},
	"DeleteOrder":        {cache.TagOrderDetails, cache.TagCookerOrders, cache.TagOrders},
	"CreateMenuItem":     {cache.TagMenuItems},
	"UpdateMenuItem":     {cache.TagMenuItems},
	"DeleteMenuItem":     {cache.TagMenuItems},
	"CreateReview":       {cache.TagReviews},
	"UpdateUserRole":     {cache.TagUsers, cache.TagMenuItems, cache.TagCookerOrders, cache.TagReports},
	"DeleteUser":         {cache.TagUsers, cache.TagReviews, cache.TagMenuItems, cache.TagCookerOrders, cache.TagReports},
	"CreateReport":       {cache.TagReports},
	"UpdateReportStatus": {cache.TagReports},
}

// Notifier receives transient notifications for the view layer.
type Notifier interface {
	Publish(level notify.Level, title, message string)
}

type nopNotifier struct{}

func (nopNotifier) Publish(notify.Level, string, string) {}

type Options struct {
	Cache    cache.Cache
	Payment  payment.Processor
	Audit    repository.AuditTrail
	Events   events.Publisher
	Notifier Notifier
	Landing  config.LandingConfig
	Logger   *zap.Logger
}

type Endpoints struct {
	db       table.API
	cache    cache.Cache
	payment  payment.Processor
	audit    repository.AuditTrail
	events   events.Publisher
	notifier Notifier
	landing  config.LandingConfig
	logger   *zap.Logger
	now      func() time.Time
}

func New(db table.API, opts Options) *Endpoints {
	e := &Endpoints{
		db:       db,
		cache:    opts.Cache,
		payment:  opts.Payment,
		audit:    opts.Audit,
		events:   opts.Events,
		notifier: opts.Notifier,
		landing:  opts.Landing,
		logger:   opts.Logger,
		now:      time.Now,
	}
	if e.cache == nil {
		e.cache = cache.NewMemory(0)
	}
	if e.payment == nil {
		e.payment = payment.NewTokenProcessor("pm_")
	}
	if e.audit == nil {
		e.audit = repository.NewMemoryAuditTrail()
	}
	if e.events == nil {
		e.events = events.Nop{}
	}
	if e.notifier == nil {
		e.notifier = nopNotifier{}
	}
	if e.landing.PerKitchenCap <= 0 {
		e.landing.PerKitchenCap = 3
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.logger = e.logger.Named("api")
	return e
}

// cached serves tag/key from the cache or runs load and stores its result.
// Results load marks incomplete (a degraded enrichment fetch) are returned
// but not stored, and nothing is stored once ctx is done or once the tag was
// invalidated during the load.
func cached[T any](ctx context.Context, e *Endpoints, tag, key string, load func(context.Context) (T, bool, error)) (T, error) {
	data, ok, err := e.cache.Get(ctx, tag, key)
	if err != nil {
		e.logger.Warn("Cache read failed", zap.String("tag", tag), zap.String("key", key), zap.Error(err))
	}
	if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		e.logger.Warn("Dropping unreadable cache entry", zap.String("tag", tag), zap.String("key", key))
	}

	// Taken before loading: a write that lands mid-load bumps it and the
	// result is not stored.
	gen, genErr := e.cache.Generation(ctx, tag)
	if genErr != nil {
		e.logger.Warn("Cache generation read failed", zap.String("tag", tag), zap.Error(genErr))
	}

	var zero T
	v, complete, err := load(ctx)
	if err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if !complete || genErr != nil {
		return v, nil
	}

	data, err = json.Marshal(v)
	if err != nil {
		e.logger.Warn("Failed to encode cache entry", zap.String("tag", tag), zap.Error(err))
		return v, nil
	}
	if err := e.cache.Put(ctx, tag, key, gen, data); err != nil {
		e.logger.Warn("Cache write failed", zap.String("tag", tag), zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// written runs after a successful mutation: it invalidates the endpoint's
// tags and records the audit entry. Both outlive the request context.
func (e *Endpoints) written(ctx context.Context, endpoint string, p *auth.Principal, entityID string, data bson.M) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	e.invalidate(ctx, endpoint)

	entry := &repository.AuditLog{
		Service:   serviceName,
		Action:    endpoint,
		EntityID:  entityID,
		Data:      data,
		CreatedAt: e.now().UTC(),
	}
	if p != nil {
		entry.ActorID = p.UserID
	}
	if err := e.audit.Record(ctx, entry); err != nil {
		e.logger.Warn("Failed to record audit log", zap.String("endpoint", endpoint), zap.Error(err))
	}
}

func (e *Endpoints) invalidate(ctx context.Context, endpoint string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	tags := Invalidates[endpoint]
	if err := e.cache.Invalidate(ctx, tags...); err != nil {
		e.logger.Error("Failed to invalidate cache",
			zap.String("endpoint", endpoint), zap.Strings("tags", tags), zap.Error(err))
	}
}

func (e *Endpoints) publish(ctx context.Context, ev events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := e.events.Publish(ctx, ev); err != nil {
		e.logger.Warn("Failed to publish event",
			zap.String("routing_key", ev.RoutingKey), zap.String("order_id", ev.OrderID), zap.Error(err))
	}
}

// AuditTrail returns the most recent audit entries for an entity. Admin only.
func (e *Endpoints) AuditTrail(ctx context.Context, p *auth.Principal, entityID string, limit int64) ([]*repository.AuditLog, error) {
	if err := require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if entityID == "" {
		return nil, invalid("entity id is required")
	}
	if limit <= 0 {
		limit = 50
	}
	logs, err := e.audit.Recent(ctx, entityID, limit)
	if err != nil {
		return nil, backendError(ctx, err)
	}
	return logs, nil
}

// require checks that p is signed in and, when roles are given, holds one.
func require(p *auth.Principal, roles ...models.Role) error {
	if p == nil {
		return ErrUnauthorized
	}
	if len(roles) > 0 && !p.HasRole(roles...) {
		return ErrForbidden
	}
	return nil
}

func decodeOne[T any](ctx context.Context, rows []table.Row) (*T, error) {
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	var v T
	if err := table.Decode(rows[0], &v); err != nil {
		return nil, backendError(ctx, err)
	}
	return &v, nil
}

func decodeAll[T any](ctx context.Context, rows []table.Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	if err := table.Decode(rows, &out); err != nil {
		return nil, backendError(ctx, err)
	}
	return out, nil
}
