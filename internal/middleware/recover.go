package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Recover turns a panic in a handler into an error passed to the echo
// error handler, which answers 500. The panic and its stack are logged
// with the request-scoped logger.
func Recover(log zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			l := Logger(c, log)
			l.Error().Err(err).Bytes("stack", stack).Msg("panic recovered")
			return err
		},
	})
}
