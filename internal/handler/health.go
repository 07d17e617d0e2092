package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports process liveness and the persistence connection
// state. It always answers 200; a broken database shows up in the body
// so probes can alert without flapping the load balancer.
type HealthHandler struct {
	DB *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler { return &HealthHandler{DB: db} }

// Check handles GET /health.
func (h *HealthHandler) Check(c echo.Context) error {
	dbStatus := "connected"
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		dbStatus = "disconnected"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "OK",
		"database": dbStatus,
	})
}
