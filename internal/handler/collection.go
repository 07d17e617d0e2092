package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sproutie/sproutie-server/internal/middleware"
	"github.com/sproutie/sproutie-server/internal/model"
	"github.com/sproutie/sproutie-server/internal/repository"
	"github.com/sproutie/sproutie-server/internal/trefle"
)

// PlantStore is the persistence surface for the user's collection.
// *repository.PlantRepo implements it.
type PlantStore interface {
	Create(ctx context.Context, p *model.SavedPlant) (uint64, error)
	GetByIDAndOwner(ctx context.Context, id uint64, subjectID string) (model.SavedPlant, error)
	DeleteByIDAndOwner(ctx context.Context, id uint64, subjectID string) (model.SavedPlant, error)
	ListByOwner(ctx context.Context, subjectID string, page, pageSize int) ([]model.SavedPlant, int64, error)
}

// CollectionHandler implements the user's personal plant collection:
// saving catalog records, removing them and listing the collection.
type CollectionHandler struct {
	Catalog Catalog
	Plants  PlantStore
}

func NewCollectionHandler(cat Catalog, p PlantStore) *CollectionHandler {
	return &CollectionHandler{Catalog: cat, Plants: p}
}

// userFieldsReq carries the user-entered part of a save request.
type userFieldsReq struct {
	Nickname string `json:"nickname"`
	Notes    string `json:"notes"`
	Location string `json:"location"`
}

// SaveByID handles POST /api/v1/plants/:id/save. The canonical record
// is fetched from the catalog so the stored botanical fields can never
// disagree with the source of truth.
func (h *CollectionHandler) SaveByID(c echo.Context) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plant id"})
	}
	var req userFieldsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	plant, err := h.Catalog.GetPlant(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, trefle.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get plant"})
	}

	return h.insert(c, &model.SavedPlant{
		SubjectID:      sub,
		TrefleID:       plant.ID,
		Slug:           plant.Slug,
		ScientificName: plant.ScientificName,
		CommonName:     plant.CommonName,
		Family:         plant.Family,
		Genus:          plant.Genus,
		ImageURL:       plant.ImageURL,
		Nickname:       req.Nickname,
		Notes:          req.Notes,
		Location:       req.Location,
	})
}

// savePayloadReq is the body of the payload-based save variant: the
// client already holds the catalog record from a search result and
// sends it along instead of having the server re-fetch it.
type savePayloadReq struct {
	Plant struct {
		ID             int64  `json:"id"`
		Slug           string `json:"slug"`
		ScientificName string `json:"scientific_name"`
		CommonName     string `json:"common_name"`
		Family         string `json:"family"`
		Genus          string `json:"genus"`
		ImageURL       string `json:"image_url"`
	} `json:"plant"`
	userFieldsReq
}

// SaveFromPayload handles POST /api/v1/plants/save. Same duplicate
// semantics as SaveByID; the owner still comes from the verified token,
// never from the body.
func (h *CollectionHandler) SaveFromPayload(c echo.Context) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req savePayloadReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Plant.ID == 0 || strings.TrimSpace(req.Plant.ScientificName) == "" || strings.TrimSpace(req.Plant.Slug) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plant id, slug and scientific_name are required"})
	}

	return h.insert(c, &model.SavedPlant{
		SubjectID:      sub,
		TrefleID:       req.Plant.ID,
		Slug:           req.Plant.Slug,
		ScientificName: req.Plant.ScientificName,
		CommonName:     req.Plant.CommonName,
		Family:         req.Plant.Family,
		Genus:          req.Plant.Genus,
		ImageURL:       req.Plant.ImageURL,
		Nickname:       req.Nickname,
		Notes:          req.Notes,
		Location:       req.Location,
	})
}

// insert stores the new collection entry and replies with the stored
// record. The unique key on (subject_id, trefle_id) makes the duplicate
// check atomic; there is no racy read-then-write here.
func (h *CollectionHandler) insert(c echo.Context, p *model.SavedPlant) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Plants.Create(ctx, p)
	if err != nil {
		if err == repository.ErrPlantSaved {
			return c.JSON(http.StatusConflict, echo.Map{"error": "plant already saved"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save plant"})
	}

	saved, err := h.Plants.GetByIDAndOwner(ctx, id, p.SubjectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load saved plant"})
	}
	return c.JSON(http.StatusCreated, toSavedPlantResp(saved))
}

// Remove handles DELETE /api/v1/plants/collection/:id. The delete is
// scoped to the caller's own rows, so a record id owned by another user
// reads as not found.
func (h *CollectionHandler) Remove(c echo.Context) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid record id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	removed, err := h.Plants.DeleteByIDAndOwner(ctx, id, sub)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove plant"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "plant removed", "plant": toSavedPlantResp(removed)})
}

// List handles GET /api/v1/plants/user/collection and returns the
// caller's active saved plants, newest first.
func (h *CollectionHandler) List(c echo.Context) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, pageSize := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	plants, total, err := h.Plants.ListByOwner(ctx, sub, page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get plants"})
	}
	out := make([]savedPlantResp, 0, len(plants))
	for _, p := range plants {
		out = append(out, toSavedPlantResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out, "meta": newListMeta(total, page, pageSize)})
}
