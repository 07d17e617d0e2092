// Package handler exposes the HTTP handlers: user registration and
// profile, catalog browsing (proxied to the Trefle client), the user's
// plant collection, favorites and the health probe. Handlers translate
// sentinel errors from the repositories and the catalog client into the
// HTTP taxonomy: 400 validation, 401 missing identity, 404 missing
// record, 409 duplicate, 500 upstream/persistence failure.
package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sproutie/sproutie-server/internal/model"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// listMeta is the pagination block returned with user-scoped listings.
type listMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func newListMeta(total int64, page, pageSize int) listMeta {
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return listMeta{Total: total, Page: page, PageSize: pageSize, TotalPages: pages}
}

// pagination reads page/page_size query parameters, clamping them to
// sane bounds. Page numbering is 1-based.
func pagination(c echo.Context) (page, pageSize int) {
	page = 1
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		page = n
	}
	pageSize = defaultPageSize
	if n, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && n > 0 {
		pageSize = n
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// savedPlantResp is the JSON projection of a collection entry.
type savedPlantResp struct {
	ID             uint64               `json:"id"`
	TrefleID       int64                `json:"trefle_id"`
	Slug           string               `json:"slug"`
	ScientificName string               `json:"scientific_name"`
	CommonName     string               `json:"common_name,omitempty"`
	Family         string               `json:"family,omitempty"`
	Genus          string               `json:"genus,omitempty"`
	ImageURL       string               `json:"image_url,omitempty"`
	Nickname       string               `json:"nickname,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	Location       string               `json:"location,omitempty"`
	PlantedDate    *time.Time           `json:"planted_date,omitempty"`
	HarvestDate    *time.Time           `json:"harvest_date,omitempty"`
	Photos         []model.Photo        `json:"photos"`
	GrowthStages   []model.GrowthStage  `json:"growth_stages"`
	CareReminders  []model.CareReminder `json:"care_reminders"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func toSavedPlantResp(p model.SavedPlant) savedPlantResp {
	r := savedPlantResp{
		ID:             p.ID,
		TrefleID:       p.TrefleID,
		Slug:           p.Slug,
		ScientificName: p.ScientificName,
		CommonName:     p.CommonName,
		Family:         p.Family,
		Genus:          p.Genus,
		ImageURL:       p.ImageURL,
		Nickname:       p.Nickname,
		Notes:          p.Notes,
		Location:       p.Location,
		PlantedDate:    p.PlantedDate,
		HarvestDate:    p.HarvestDate,
		Photos:         p.Photos,
		GrowthStages:   p.GrowthStages,
		CareReminders:  p.CareReminders,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if r.Photos == nil {
		r.Photos = []model.Photo{}
	}
	if r.GrowthStages == nil {
		r.GrowthStages = []model.GrowthStage{}
	}
	if r.CareReminders == nil {
		r.CareReminders = []model.CareReminder{}
	}
	return r
}

// favoriteResp is the JSON projection of a favorite.
type favoriteResp struct {
	ID             uint64    `json:"id"`
	TrefleID       int64     `json:"trefle_id"`
	Slug           string    `json:"slug"`
	ScientificName string    `json:"scientific_name"`
	CommonName     string    `json:"common_name,omitempty"`
	Family         string    `json:"family,omitempty"`
	Genus          string    `json:"genus,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toFavoriteResp(f model.FavoritePlant) favoriteResp {
	return favoriteResp{
		ID:             f.ID,
		TrefleID:       f.TrefleID,
		Slug:           f.Slug,
		ScientificName: f.ScientificName,
		CommonName:     f.CommonName,
		Family:         f.Family,
		Genus:          f.Genus,
		CreatedAt:      f.CreatedAt,
	}
}
