package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sproutie/sproutie-server/internal/middleware"
	"github.com/sproutie/sproutie-server/internal/model"
	"github.com/sproutie/sproutie-server/internal/trefle"
)

// Catalog is the subset of the Trefle client the handlers use.
// *trefle.Client implements it; tests substitute fakes.
type Catalog interface {
	Search(ctx context.Context, query string, page int) (*trefle.Envelope, error)
	List(ctx context.Context, f trefle.ListFilters, page int) (*trefle.Envelope, error)
	Get(ctx context.Context, id int64) (*trefle.Envelope, error)
	GetPlant(ctx context.Context, id int64) (*trefle.Plant, error)
	Species(ctx context.Context, id int64, page int) (*trefle.Envelope, error)
	Families(ctx context.Context, page int) (*trefle.Envelope, error)
	PlantsByFamily(ctx context.Context, slug string, page int) (*trefle.Envelope, error)
	Genera(ctx context.Context, page int) (*trefle.Envelope, error)
	PlantsByGenus(ctx context.Context, slug string, page int) (*trefle.Envelope, error)
}

// SearchStore records and lists search-history entries.
// *repository.SearchRepo implements it.
type SearchStore interface {
	Insert(ctx context.Context, subjectID, query string, resultCount int) error
	ListByOwner(ctx context.Context, subjectID string, page, pageSize int) ([]model.SearchRecord, int64, error)
}

// BrowseHandler proxies catalog browsing to the Trefle client. The
// upstream envelope is forwarded untouched so the mobile client sees
// exactly what the catalog returned.
type BrowseHandler struct {
	Catalog  Catalog
	Searches SearchStore
}

func NewBrowseHandler(cat Catalog, s SearchStore) *BrowseHandler {
	return &BrowseHandler{Catalog: cat, Searches: s}
}

// Search handles GET /api/v1/plants/search?q=&page=. Authenticated
// callers additionally get a best-effort search-history entry; a failed
// history write is logged and never fails the search itself.
func (h *BrowseHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "search query required"})
	}

	env, err := h.Catalog.Search(c.Request().Context(), q, pageParam(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to search plants"})
	}

	if sub, ok := middleware.Subject(c); ok {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()
		if err := h.Searches.Insert(ctx, sub, q, resultCount(env)); err != nil {
			log.Printf("search history insert failed for %s: %v", sub, err)
		}
	}
	return c.JSON(http.StatusOK, env)
}

// List handles GET /api/v1/plants with optional filters. Boolean query
// parameters count as set only when they are literally "true"; any
// other value omits the filter.
func (h *BrowseHandler) List(c echo.Context) error {
	f := trefle.ListFilters{
		CommonName:        c.QueryParam("common_name"),
		Family:            c.QueryParam("family"),
		Genus:             c.QueryParam("genus"),
		Edible:            c.QueryParam("edible") == "true",
		Vegetable:         c.QueryParam("vegetable") == "true",
		FlowerConspicuous: c.QueryParam("flower_conspicuous") == "true",
	}
	env, err := h.Catalog.List(c.Request().Context(), f, pageParam(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get plants"})
	}
	return c.JSON(http.StatusOK, env)
}

// Get handles GET /api/v1/plants/:id and returns the raw single-record
// envelope. A missing catalog record surfaces as 404.
func (h *BrowseHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plant id"})
	}
	env, err := h.Catalog.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, trefle.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get plant"})
	}
	return c.JSON(http.StatusOK, env)
}

// Species handles GET /api/v1/plants/:id/species.
func (h *BrowseHandler) Species(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plant id"})
	}
	env, err := h.Catalog.Species(c.Request().Context(), id, pageParam(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get species"})
	}
	return c.JSON(http.StatusOK, env)
}

// Families handles GET /api/v1/plants/families.
func (h *BrowseHandler) Families(c echo.Context) error {
	env, err := h.Catalog.Families(c.Request().Context(), pageParam(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get families"})
	}
	return c.JSON(http.StatusOK, env)
}

// PlantsByFamily handles GET /api/v1/plants/families/:slug/plants.
func (h *BrowseHandler) PlantsByFamily(c echo.Context) error {
	env, err := h.Catalog.PlantsByFamily(c.Request().Context(), c.Param("slug"), pageParam(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get plants"})
	}
	return c.JSON(http.StatusOK, env)
}

// Genera handles GET /api/v1/plants/genera.
func (h *BrowseHandler) Genera(c echo.Context) error {
	env, err := h.Catalog.Genera(c.Request().Context(), pageParam(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get genera"})
	}
	return c.JSON(http.StatusOK, env)
}

// PlantsByGenus handles GET /api/v1/plants/genera/:slug/plants.
func (h *BrowseHandler) PlantsByGenus(c echo.Context) error {
	env, err := h.Catalog.PlantsByGenus(c.Request().Context(), c.Param("slug"), pageParam(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get plants"})
	}
	return c.JSON(http.StatusOK, env)
}

// History handles GET /api/v1/plants/user/history and returns the
// caller's recent searches, newest first.
func (h *BrowseHandler) History(c echo.Context) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, pageSize := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	records, total, err := h.Searches.ListByOwner(ctx, sub, page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get search history"})
	}
	type entry struct {
		Query       string    `json:"query"`
		ResultCount int       `json:"result_count"`
		SearchedAt  time.Time `json:"searched_at"`
	}
	out := make([]entry, 0, len(records))
	for _, r := range records {
		out = append(out, entry{Query: r.Query, ResultCount: r.ResultCount, SearchedAt: r.CreatedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out, "meta": newListMeta(total, page, pageSize)})
}

// pageParam reads the upstream pagination parameter; 0 means "let the
// catalog pick its default".
func pageParam(c echo.Context) int {
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		return n
	}
	return 0
}

// resultCount pulls meta.total out of a listing envelope for the
// search-history entry. Zero when the upstream sends no meta block.
func resultCount(env *trefle.Envelope) int {
	if env == nil || len(env.Meta) == 0 {
		return 0
	}
	var meta struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(env.Meta, &meta); err != nil {
		return 0
	}
	return meta.Total
}
