// Package router wires the HTTP routes to their handlers and applies
// the middleware stack: rate limiting on the whole API surface,
// response caching on catalog browse endpoints and bearer-token auth on
// user-scoped routes.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sproutie/sproutie-server/internal/handler"
	"github.com/sproutie/sproutie-server/internal/middleware"
)

// Handlers bundles everything the router needs to register.
type Handlers struct {
	Health     *handler.HealthHandler
	Users      *handler.UserHandler
	Browse     *handler.BrowseHandler
	Collection *handler.CollectionHandler
	Favorites  *handler.FavoriteHandler
}

// Register mounts all routes on the Echo instance. jwtSecret verifies
// identity-provider tokens; cache and rate may be pass-through
// middleware when Redis is unavailable.
func Register(e *echo.Echo, h Handlers, jwtSecret string, cache, rate echo.MiddlewareFunc) {
	// Liveness probe outside the versioned prefix, uncached and unlimited.
	e.GET("/health", h.Health.Check)

	api := e.Group("/api/v1", rate)

	// User profile endpoints. Registration is called by the client right
	// after the identity provider completes sign-up, so it cannot carry a
	// token yet.
	api.POST("/users", h.Users.Create)
	api.GET("/users/:uid", h.Users.Get)
	api.PATCH("/users/me", h.Users.Update, middleware.RequireAuth(jwtSecret))

	plants := api.Group("/plants")

	// Catalog browse (proxied to Trefle). Search is deliberately not
	// cached: a cache hit would skip the handler and with it the
	// best-effort search-history append.
	plants.GET("/search", h.Browse.Search, middleware.OptionalAuth(jwtSecret))
	plants.GET("", h.Browse.List, cache)
	plants.GET("/families", h.Browse.Families, cache)
	plants.GET("/families/:slug/plants", h.Browse.PlantsByFamily, cache)
	plants.GET("/genera", h.Browse.Genera, cache)
	plants.GET("/genera/:slug/plants", h.Browse.PlantsByGenus, cache)
	plants.GET("/:id", h.Browse.Get, cache)
	plants.GET("/:id/species", h.Browse.Species, cache)

	// User-scoped routes: the owner is always the verified token subject.
	auth := middleware.RequireAuth(jwtSecret)
	plants.POST("/save", h.Collection.SaveFromPayload, auth)
	plants.POST("/:id/save", h.Collection.SaveByID, auth)
	plants.DELETE("/collection/:id", h.Collection.Remove, auth)
	plants.GET("/user/collection", h.Collection.List, auth)
	plants.POST("/:id/favorite", h.Favorites.Add, auth)
	plants.DELETE("/:id/favorite", h.Favorites.Remove, auth)
	plants.GET("/user/favorites", h.Favorites.List, auth)
	plants.GET("/user/history", h.Browse.History, auth)
}
