package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/sproutie/sproutie-server/internal/config"
	"github.com/sproutie/sproutie-server/internal/database"
	"github.com/sproutie/sproutie-server/internal/handler"
	"github.com/sproutie/sproutie-server/internal/middleware"
	"github.com/sproutie/sproutie-server/internal/repository"
	"github.com/sproutie/sproutie-server/internal/router"
	"github.com/sproutie/sproutie-server/internal/trefle"
)

func main() {
	// Local development reads a .env file; in deployment the variables
	// come from the environment and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load()

	// The database must be reachable before the server accepts traffic.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	// One catalog client for the whole process; fails fast without a token.
	catalog, err := trefle.New(cfg.TrefleBaseURL, cfg.TrefleAPIToken)
	if err != nil {
		log.Fatalf("trefle client: %v", err)
	}

	// Redis is optional: without it, caching and rate limiting become
	// pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}
	cacheMW := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	users := repository.NewUserRepo(db)
	plants := repository.NewPlantRepo(db)
	favorites := repository.NewFavoriteRepo(db)
	searches := repository.NewSearchRepo(db)

	e := echo.New()
	e.HideBanner = true
	// Process-level fallback: anything a handler did not map itself
	// becomes a generic JSON 500 without leaking internals.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		if code == http.StatusInternalServerError {
			log.Printf("unhandled error: %v", err)
			msg = "internal server error"
		}
		_ = c.JSON(code, echo.Map{"error": msg})
	}

	router.Register(e, router.Handlers{
		Health:     handler.NewHealthHandler(db),
		Users:      handler.NewUserHandler(users),
		Browse:     handler.NewBrowseHandler(catalog, searches),
		Collection: handler.NewCollectionHandler(catalog, plants),
		Favorites:  handler.NewFavoriteHandler(catalog, favorites),
	}, cfg.JWTSecret, cacheMW, rateMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
