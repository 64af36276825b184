// Package router registers the HTTP routes of the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/handler"
)

// RegisterRoutes registers routes that are not part of the domain API.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterFilms maps the film catalog, the likes and the popularity
// ranking. /films/popular is a static route and wins over /films/:id.
func RegisterFilms(e *echo.Echo, h *handler.FilmHandler) {
	g := e.Group("/films")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("", h.Update)
	g.GET("/popular", h.Popular)
	g.GET("/:id", h.Get)
	g.PUT("/:id/like/:userId", h.Like)
	g.DELETE("/:id/like/:userId", h.Unlike)
}

// RegisterUsers maps users and the friendship graph.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler) {
	g := e.Group("/users")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("", h.Update)
	g.GET("/:id", h.Get)
	g.GET("/:id/friends", h.Friends)
	g.PUT("/:id/friends/:friendId", h.AddFriend)
	g.DELETE("/:id/friends/:friendId", h.RemoveFriend)
	g.GET("/:id/friends/common/:otherId", h.CommonFriends)
}
