// Package notify keeps the transient notifications the view layer shows as
// toasts (connectivity changes, order events). A single actor owns the ring
// so publishers never contend on a lock.
package notify

import (
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type publish struct {
	n Notification
}

type recentRequest struct {
	limit int
}

type recentResponse struct {
	items []Notification
}

type hubActor struct {
	capacity int
	ring     []Notification
	logger   *zap.Logger
}

func (a *hubActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.logger.Debug("Notification hub started", zap.Int("capacity", a.capacity))

	case *publish:
		a.ring = append(a.ring, msg.n)
		if len(a.ring) > a.capacity {
			a.ring = a.ring[len(a.ring)-a.capacity:]
		}
		a.logger.Info("Notification",
			zap.String("level", string(msg.n.Level)),
			zap.String("title", msg.n.Title),
			zap.String("message", msg.n.Message))

	case *recentRequest:
		n := len(a.ring)
		if msg.limit > 0 && msg.limit < n {
			n = msg.limit
		}
		items := make([]Notification, 0, n)
		for i := len(a.ring) - 1; i >= 0 && len(items) < n; i-- {
			items = append(items, a.ring[i])
		}
		ctx.Respond(&recentResponse{items: items})

	case *actor.Stopping:
		a.logger.Debug("Notification hub stopping")
	}
}

type Hub struct {
	system  *actor.ActorSystem
	pid     *actor.PID
	timeout time.Duration
}

func NewHub(capacity int, logger *zap.Logger) *Hub {
	if capacity <= 0 {
		capacity = 50
	}
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return &hubActor{capacity: capacity, logger: logger.Named("notify")}
	})
	return &Hub{
		system:  system,
		pid:     system.Root.Spawn(props),
		timeout: 2 * time.Second,
	}
}

func (h *Hub) Publish(level Level, title, message string) {
	h.system.Root.Send(h.pid, &publish{n: Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Title:   title,
		Message: message,
		At:      time.Now().UTC(),
	}})
}

// Recent returns up to limit notifications, newest first.
func (h *Hub) Recent(limit int) ([]Notification, error) {
	res, err := h.system.Root.RequestFuture(h.pid, &recentRequest{limit: limit}, h.timeout).Result()
	if err != nil {
		return nil, fmt.Errorf("notification hub: %w", err)
	}
	resp, ok := res.(*recentResponse)
	if !ok {
		return nil, fmt.Errorf("notification hub: unexpected reply %T", res)
	}
	return resp.items, nil
}

func (h *Hub) Close() {
	h.system.Root.Stop(h.pid)
}
