package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id in and out of the service.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestLogger assigns a request id, logs each request once it completes
// and records request metrics. Metrics may be nil. It must run outside the
// error middleware so the logged status is the rendered one.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(requestIDKey, requestID)
		c.Set(RequestIDHeader, requestID)

		err := c.Next()

		status := c.Response().StatusCode()
		latency := time.Since(start)
		route := routeLabel(c)

		metrics.RecordRequest(route, c.Method(), status, latency)

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.IP()),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request completed", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
		return err
	}
}

// RequestID returns the id assigned by RequestLogger.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// routeLabel keeps metric cardinality bounded by using the matched route pattern.
func routeLabel(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" {
		return r.Path
	}
	return "unmatched"
}
