package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/rims/internal/handler"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger attaches a request-scoped logrus entry to the context
// and logs one line per request when it completes.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := req.Header.Get(requestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(requestIDHeader, rid)

			entry := log.WithFields(logrus.Fields{
				"request_id": rid,
				"method":     req.Method,
				"path":       c.Path(),
			})
			c.Set(handler.LoggerKey, entry)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := logrus.Fields{
				"status":      c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   c.RealIP(),
			}
			if uid, ok := c.Get("user_id").(uint64); ok {
				fields["user_id"] = uid
			}
			e := entry.WithFields(fields)
			switch {
			case c.Response().Status >= 500:
				e.Error("request")
			case c.Response().Status >= 400:
				e.Warn("request")
			default:
				e.Info("request")
			}
			return nil
		}
	}
}

func requestLogger(c echo.Context) logrus.FieldLogger {
	if l, ok := c.Get(handler.LoggerKey).(logrus.FieldLogger); ok {
		return l
	}
	return logrus.StandardLogger()
}
