package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "murmur_registrations_total",
		Help: "Number of accounts created",
	})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	TweetsPostedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_tweets_posted_total",
		Help: "Tweets created, split by top-level post or reply",
	}, []string{"kind"})

	LikesToggledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_likes_toggled_total",
		Help: "Like toggles by resulting state",
	}, []string{"state"})

	PushDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_push_deliveries_total",
		Help: "Web push deliveries by result",
	}, []string{"result"})

	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_redis_errors_total",
		Help: "Redis command failures by command",
	}, []string{"command"})
)

var (
	metricsOnce sync.Once
	fiberProm   *fiberprometheus.FiberPrometheus
)

// InitMetrics registers the HTTP metrics collector and the /metrics endpoint on app.
// The collector is created once per process since it registers on the default registry.
func InitMetrics(app *fiber.App, serviceName string) {
	metricsOnce.Do(func() {
		fiberProm = fiberprometheus.New(serviceName)
	})
	fiberProm.RegisterAt(app, "/metrics")
	app.Use(fiberProm.Middleware)
}
