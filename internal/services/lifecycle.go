package services

import (
	"context"

	"github.com/sjperalta/arrendando-api/internal/cache"
	"github.com/sjperalta/arrendando-api/internal/events"
	"github.com/sjperalta/arrendando-api/internal/jobs"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

// lifecycle fans a payment or contract change out to the report cache,
// the event broker and admin notifications. Every dependency is optional.
type lifecycle struct {
	cache  cache.Store
	events events.Publisher
	notify *NotificationService
	worker *jobs.Worker
}

// changed drops every cached report
func (l *lifecycle) changed(ctx context.Context) {
	if l == nil || l.cache == nil {
		return
	}
	if err := l.cache.InvalidatePrefix(ctx, cache.ReportsPrefix); err != nil {
		logger.Warn("[Cache] Failed to invalidate reports", "backend", l.cache.Backend(), "error", err)
	}
}

// countsChanged drops the cached dashboard counters only
func (l *lifecycle) countsChanged(ctx context.Context) {
	if l == nil || l.cache == nil {
		return
	}
	if err := l.cache.InvalidatePrefix(ctx, dashboardKey); err != nil {
		logger.Warn("[Cache] Failed to invalidate dashboard", "backend", l.cache.Backend(), "error", err)
	}
}

// publish sends ev without blocking the request
func (l *lifecycle) publish(ev events.Event) {
	if l == nil || l.events == nil {
		return
	}
	l.async(func(ctx context.Context) error {
		return l.events.Publish(ctx, ev)
	})
}

// notifyAdmins creates an in-app notice for every active admin
func (l *lifecycle) notifyAdmins(title, message, tipo string) {
	if l == nil || l.notify == nil {
		return
	}
	l.async(func(ctx context.Context) error {
		return l.notify.NotifyAdmins(ctx, title, message, tipo)
	})
}

func (l *lifecycle) async(job jobs.Job) {
	if l != nil && l.worker != nil {
		l.worker.EnqueueAsync(job)
		return
	}
	if err := job(context.Background()); err != nil {
		logger.Error("[Lifecycle] Side effect failed", "error", err)
	}
}
