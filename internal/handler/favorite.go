package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sproutie/sproutie-server/internal/middleware"
	"github.com/sproutie/sproutie-server/internal/model"
	"github.com/sproutie/sproutie-server/internal/repository"
	"github.com/sproutie/sproutie-server/internal/trefle"
)

// FavoriteStore is the persistence surface for favorites.
// *repository.FavoriteRepo implements it.
type FavoriteStore interface {
	Create(ctx context.Context, f *model.FavoritePlant) (uint64, error)
	Delete(ctx context.Context, subjectID string, trefleID int64) error
	ListByOwner(ctx context.Context, subjectID string, page, pageSize int) ([]model.FavoritePlant, int64, error)
}

// FavoriteHandler implements favoriting of catalog records.
type FavoriteHandler struct {
	Catalog   Catalog
	Favorites FavoriteStore
}

func NewFavoriteHandler(cat Catalog, f FavoriteStore) *FavoriteHandler {
	return &FavoriteHandler{Catalog: cat, Favorites: f}
}

// Add handles POST /api/v1/plants/:id/favorite. The canonical record is
// fetched first; favoriting a nonexistent catalog id is a 404, a second
// favorite of the same record is a 409.
func (h *FavoriteHandler) Add(c echo.Context) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plant id"})
	}

	plant, err := h.Catalog.GetPlant(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, trefle.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get plant"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	fav := &model.FavoritePlant{
		SubjectID:      sub,
		TrefleID:       plant.ID,
		Slug:           plant.Slug,
		ScientificName: plant.ScientificName,
		CommonName:     plant.CommonName,
		Family:         plant.Family,
		Genus:          plant.Genus,
	}
	newID, err := h.Favorites.Create(ctx, fav)
	if err != nil {
		if err == repository.ErrFavoriteExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "plant already favorited"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to favorite plant"})
	}
	fav.ID = newID
	fav.CreatedAt = time.Now().UTC()
	return c.JSON(http.StatusCreated, toFavoriteResp(*fav))
}

// Remove handles DELETE /api/v1/plants/:id/favorite. Unfavoriting is
// idempotent: removing an absent favorite still returns 200.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Favorites.Delete(ctx, sub, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to unfavorite plant"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "plant unfavorited"})
}

// List handles GET /api/v1/plants/user/favorites, newest first.
func (h *FavoriteHandler) List(c echo.Context) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, pageSize := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	favs, total, err := h.Favorites.ListByOwner(ctx, sub, page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get favorites"})
	}
	out := make([]favoriteResp, 0, len(favs))
	for _, f := range favs {
		out = append(out, toFavoriteResp(f))
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out, "meta": newListMeta(total, page, pageSize)})
}
