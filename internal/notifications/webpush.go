package notifications

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"murmur/internal/middleware"
	"murmur/internal/models"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// VAPIDConfig holds the application server keys used to sign push requests.
type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
	TTL        time.Duration
}

// WebPusher delivers payloads with the Web Push protocol.
type WebPusher struct {
	cfg    VAPIDConfig
	client webpush.HTTPClient
}

// NewWebPusher creates a pusher signing requests with cfg. A nil client uses http.DefaultClient.
func NewWebPusher(cfg VAPIDConfig, client webpush.HTTPClient) *WebPusher {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebPusher{cfg: cfg, client: client}
}

// Push encrypts payload for sub and posts it to the push service.
// Any non-2xx response is an error.
func (p *WebPusher) Push(ctx context.Context, sub models.Subscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      p.client,
		Subscriber:      p.cfg.Subscriber,
		VAPIDPublicKey:  p.cfg.PublicKey,
		VAPIDPrivateKey: p.cfg.PrivateKey,
		TTL:             int(p.cfg.TTL.Seconds()),
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push service responded %d", resp.StatusCode)
	}
	return nil
}

// NopPusher drops every payload. It is used when VAPID keys are not configured.
type NopPusher struct{}

func (NopPusher) Push(ctx context.Context, sub models.Subscription, _ []byte) error {
	middleware.Logger.DebugContext(ctx, "push disabled, dropping notification",
		slog.Uint64("subscription_id", uint64(sub.ID)))
	return nil
}
