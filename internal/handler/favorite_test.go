package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func favorite(t *testing.T, h *FavoriteHandler, subject, id string) *httptest.ResponseRecorder {
	t.Helper()
	c, rec := newCtx(t, http.MethodPost, "/api/v1/plants/"+id+"/favorite", "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	if subject != "" {
		asSubject(c, subject)
	}
	require.NoError(t, h.Add(c))
	return rec
}

func unfavorite(t *testing.T, h *FavoriteHandler, subject, id string) *httptest.ResponseRecorder {
	t.Helper()
	c, rec := newCtx(t, http.MethodDelete, "/api/v1/plants/"+id+"/favorite", "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	if subject != "" {
		asSubject(c, subject)
	}
	require.NoError(t, h.Remove(c))
	return rec
}

func TestFavoriteAdd(t *testing.T) {
	t.Run("requires auth", func(t *testing.T) {
		h := NewFavoriteHandler(rosaCatalog(), &fakeFavoriteStore{})
		rec := favorite(t, h, "", "42")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("favorites a canonical record", func(t *testing.T) {
		h := NewFavoriteHandler(rosaCatalog(), &fakeFavoriteStore{})
		rec := favorite(t, h, "uid-1", "42")
		assert.Equal(t, http.StatusCreated, rec.Code)

		var got favoriteResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, int64(42), got.TrefleID)
		assert.Equal(t, "Rosa rubiginosa", got.ScientificName)
	})

	t.Run("unknown catalog id is 404", func(t *testing.T) {
		h := NewFavoriteHandler(rosaCatalog(), &fakeFavoriteStore{})
		rec := favorite(t, h, "uid-1", "999")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("second favorite of the same pair conflicts", func(t *testing.T) {
		h := NewFavoriteHandler(rosaCatalog(), &fakeFavoriteStore{})
		rec := favorite(t, h, "uid-1", "42")
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = favorite(t, h, "uid-1", "42")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestFavoriteRemove_Idempotent(t *testing.T) {
	h := NewFavoriteHandler(rosaCatalog(), &fakeFavoriteStore{})
	rec := favorite(t, h, "uid-1", "42")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = unfavorite(t, h, "uid-1", "42")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Absence of a match is not an error.
	rec = unfavorite(t, h, "uid-1", "42")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFavoriteList(t *testing.T) {
	store := &fakeFavoriteStore{}
	h := NewFavoriteHandler(rosaCatalog(), store)
	rec := favorite(t, h, "uid-1", "42")
	require.Equal(t, http.StatusCreated, rec.Code)

	c, lrec := newCtx(t, http.MethodGet, "/api/v1/plants/user/favorites", "")
	asSubject(c, "uid-1")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, lrec.Code)

	var got struct {
		Data []favoriteResp `json:"data"`
		Meta listMeta       `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(lrec.Body.Bytes(), &got))
	// The favorited id appears exactly once.
	require.Len(t, got.Data, 1)
	assert.Equal(t, int64(42), got.Data[0].TrefleID)
	assert.Equal(t, int64(1), got.Meta.Total)

	// Another user sees an empty list.
	c, lrec = newCtx(t, http.MethodGet, "/api/v1/plants/user/favorites", "")
	asSubject(c, "uid-2")
	require.NoError(t, h.List(c))
	require.NoError(t, json.Unmarshal(lrec.Body.Bytes(), &got))
	assert.Empty(t, got.Data)
}
