package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

// RequestLogger assigns a request id (reusing the client's when present),
// stores a request-scoped logger on the context and writes one access log
// line per request once the error handler has run.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = xid.New().String()
			}
			req.Header.Set(HeaderRequestID, rid)
			c.Response().Header().Set(HeaderRequestID, rid)

			reqLog := log.With().Str("request_id", rid).Logger()
			c.SetRequest(req.WithContext(reqLog.WithContext(req.Context())))

			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo render the error so the logged status is final
				c.Error(err)
			}

			res := c.Response()
			reqLog.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", c.RealIP()).
				Str("user_agent", req.UserAgent()).
				Int("status", res.Status).
				Int64("size", res.Size).
				Dur("duration", time.Since(start)).
				Msg("http_request")
			return nil
		}
	}
}

// Logger returns the request-scoped logger, or fallback outside a request
// handled by RequestLogger.
func Logger(c echo.Context, fallback zerolog.Logger) zerolog.Logger {
	if l := zerolog.Ctx(c.Request().Context()); l != nil && l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return fallback
}
