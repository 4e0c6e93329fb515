// Package notify polls the backend for new-article notifications.
package notify

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dyike/WealthGo/internal/models"
)

// DefaultInterval matches the web client's polling period.
const DefaultInterval = 15 * time.Second

type Source interface {
	Notifications(ctx context.Context, clientID string) (models.NotificationList, error)
	MarkNotificationsRead(ctx context.Context, clientID string, ids []string) error
}

// Poller keeps the visible notification set for one client id.
type Poller struct {
	source   Source
	clientID string
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	current []models.Notification
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPoller(source Source, clientID string, opts ...Option) *Poller {
	p := &Poller{
		source:   source,
		clientID: clientID,
		interval: DefaultInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Current returns a copy of the visible notifications.
func (p *Poller) Current() []models.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.current)
}

// Poll fetches once. The visible set is replaced only when the backend
// reports a non-zero count; it reports whether that happened.
func (p *Poller) Poll(ctx context.Context) (bool, error) {
	list, err := p.source.Notifications(ctx, p.clientID)
	if err != nil {
		return false, fmt.Errorf("fetch notifications: %w", err)
	}
	if list.Count <= 0 {
		return false, nil
	}
	p.mu.Lock()
	p.current = slices.Clone(list.Notifications)
	p.mu.Unlock()
	return true, nil
}

// Run polls immediately and then every interval until ctx is done. Fetch
// errors are logged and polling continues. onUpdate, if set, gets the new
// set after each replacement.
func (p *Poller) Run(ctx context.Context, onUpdate func([]models.Notification)) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		updated, err := p.Poll(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			p.logger.Warn("notification poll failed", zap.String("client_id", p.clientID), zap.Error(err))
		case updated && onUpdate != nil:
			onUpdate(p.Current())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// MarkRead acknowledges ids and drops them from the visible set. On
// failure the set is left alone.
func (p *Poller) MarkRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := p.source.MarkNotificationsRead(ctx, p.clientID, ids); err != nil {
		p.logger.Warn("mark notifications read failed", zap.Strings("ids", ids), zap.Error(err))
		return fmt.Errorf("mark notifications read: %w", err)
	}
	p.mu.Lock()
	p.current = slices.DeleteFunc(p.current, func(n models.Notification) bool {
		return slices.Contains(ids, n.ID)
	})
	p.mu.Unlock()
	return nil
}

// IDs lists the ids of ns in order.
func IDs(ns []models.Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.ID)
	}
	return out
}

// Format renders one notification as a short toast.
func Format(n models.Notification, loc *time.Location) string {
	s := fmt.Sprintf("📰 New article on %s\n   %s", n.Person, n.Message)
	if t := n.Time(); !t.IsZero() {
		if loc == nil {
			loc = time.Local
		}
		s += "\n   " + t.In(loc).Format("02 Jan 2006, 03:04 PM")
	}
	return s
}
