package observability

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

const (
	// PrincipalIDKey is the fiber.Locals key under which handlers expose the caller id for request logs.
	PrincipalIDKey = "principal_id"
	// UnmatchedRoute labels requests that matched no registered route.
	UnmatchedRoute = "unmatched"

	unmatchedKey = "route_unmatched"
)

// NewLogger creates a structured zap.Logger configured via env settings.
func NewLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: level == zapcore.DebugLevel,
		Encoding:    "json",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "message",
			LevelKey:   "level",
			TimeKey:    "ts",
			EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
				enc.AppendString(l.String())
			},
			EncodeTime: zapcore.ISO8601TimeEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapCfg.Build()
}

// MarkUnmatched records that the router found no route for the request.
func MarkUnmatched(c *fiber.Ctx) {
	c.Locals(unmatchedKey, true)
}

// RouteLabel returns the registered route template for metrics, never the
// raw path, so label cardinality stays bounded by the route table.
func RouteLabel(c *fiber.Ctx) string {
	if unmatched, _ := c.Locals(unmatchedKey).(bool); unmatched {
		return UnmatchedRoute
	}
	r := c.Route()
	if r == nil || r.Path == "" || len(r.Handlers) == 0 {
		return UnmatchedRoute
	}
	return r.Path
}

// RequestLogger logs one line per request and feeds the request counters.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)
		status := c.Response().StatusCode()

		metrics.RecordRequest(RouteLabel(c), c.Method(), status, duration)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", duration),
			zap.String("ip", c.IP()),
		}
		if id, ok := c.Locals(PrincipalIDKey).(string); ok && id != "" {
			fields = append(fields, zap.String("user_id", id))
		}
		logger.Info("request", fields...)
		return err
	}
}
