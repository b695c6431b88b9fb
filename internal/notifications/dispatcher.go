// Package notifications fans new-tweet events out to browser push subscriptions.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Pusher delivers one encoded payload to one subscription.
type Pusher interface {
	Push(ctx context.Context, sub models.Subscription, payload []byte) error
}

// SubscriptionLister is the read side of the subscription registry.
type SubscriptionLister interface {
	List(ctx context.Context) ([]models.Subscription, error)
}

// Payload is the message shown by the service worker.
type Payload struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	TweetID uint   `json:"tweet_id,omitempty"`
}

// Result summarizes one broadcast.
type Result struct {
	Delivered int
	Failed    int
}

// Dispatcher sends a payload to every registered subscription, one at a time.
// Delivery is best-effort: failures are logged and counted, never retried, and
// never returned to the caller.
type Dispatcher struct {
	subs    SubscriptionLister
	pusher  Pusher
	timeout time.Duration
}

// NewDispatcher creates a dispatcher. A non-positive timeout leaves deliveries bounded
// only by the caller's context.
func NewDispatcher(subs SubscriptionLister, pusher Pusher, timeout time.Duration) *Dispatcher {
	return &Dispatcher{subs: subs, pusher: pusher, timeout: timeout}
}

// Broadcast delivers p to all subscriptions and reports how many deliveries succeeded.
func (d *Dispatcher) Broadcast(ctx context.Context, p Payload) Result {
	ctx, span := observability.Tracer.Start(ctx, "notifications.broadcast")
	defer span.End()

	var res Result

	subs, err := d.subs.List(ctx)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "push broadcast skipped: could not load subscriptions",
			slog.String("error", err.Error()))
		observability.RecordError(span, err)
		return res
	}

	body, err := json.Marshal(p)
	if err != nil {
		observability.RecordError(span, err)
		return res
	}

	for _, sub := range subs {
		if err := d.deliver(ctx, sub, body); err != nil {
			res.Failed++
			middleware.PushDeliveriesTotal.WithLabelValues("failed").Inc()
			middleware.Logger.WarnContext(ctx, "push delivery failed",
				slog.Uint64("subscription_id", uint64(sub.ID)),
				slog.String("error", err.Error()))
			continue
		}
		res.Delivered++
		middleware.PushDeliveriesTotal.WithLabelValues("delivered").Inc()
	}

	span.SetAttributes(
		attribute.Int("push.subscriptions", len(subs)),
		attribute.Int("push.delivered", res.Delivered),
		attribute.Int("push.failed", res.Failed),
	)
	return res
}

func (d *Dispatcher) deliver(ctx context.Context, sub models.Subscription, body []byte) (err error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			middleware.Logger.ErrorContext(ctx, "panic in push delivery", slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("push panicked: %v", r)
		}
	}()

	return d.pusher.Push(ctx, sub, body)
}
