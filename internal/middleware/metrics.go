package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by operation name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkup_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// BlobBytesStored counts bytes written to the blob store.
	BlobBytesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkup_blob_bytes_stored_total",
		Help: "Total number of bytes written to the blob store",
	})

	// BlobBytesServed counts blob bytes streamed to clients.
	BlobBytesServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkup_blob_bytes_served_total",
		Help: "Total number of blob bytes streamed to clients",
	})
)

// InitMetrics creates the fiberprometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-instrumentation handler for the
// given fiberprometheus instance.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
