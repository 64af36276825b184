package middleware

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

// Serialize runs every request under mu. Mutating methods take the write
// lock and everything else the read lock, so handlers observe and render a
// consistent snapshot of the in-memory stores, which do no locking of their
// own. The lock is held until the handler returns.
func Serialize(mu *sync.RWMutex) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isMutating(c.Request().Method) {
				mu.Lock()
				defer mu.Unlock()
			} else {
				mu.RLock()
				defer mu.RUnlock()
			}
			return next(c)
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
