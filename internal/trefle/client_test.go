package trefle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, "test-token")
	require.NoError(t, err)
	return c
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New("https://trefle.io/api/v1", "")
	assert.Error(t, err)

	c, err := New("https://trefle.io/api/v1", "tok")
	assert.NoError(t, err)
	assert.NotNil(t, c)
}

func TestSearch_AppendsTokenAndQuery(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":1}],"meta":{"total":1}}`))
	})

	env, err := c.Search(context.Background(), "rose", 3)
	require.NoError(t, err)

	assert.Equal(t, "/plants/search", gotPath)
	assert.Equal(t, []string{"test-token"}, gotQuery["token"])
	assert.Equal(t, []string{"rose"}, gotQuery["q"])
	assert.Equal(t, []string{"3"}, gotQuery["page"])
	assert.JSONEq(t, `[{"id":1}]`, string(env.Data))
	assert.JSONEq(t, `{"total":1}`, string(env.Meta))
}

func TestList_TranslatesFilters(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	_, err := c.List(context.Background(), ListFilters{
		CommonName: "mint",
		Family:     "Lamiaceae",
		Edible:     true,
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"mint"}, gotQuery["filter[common_name]"])
	assert.Equal(t, []string{"Lamiaceae"}, gotQuery["filter[family_name]"])
	assert.Equal(t, []string{"true"}, gotQuery["filter[edible]"])
	// Unset filters and page=0 never reach the wire.
	assert.NotContains(t, gotQuery, "filter[genus_name]")
	assert.NotContains(t, gotQuery, "filter[vegetable]")
	assert.NotContains(t, gotQuery, "filter[flower_conspicuous]")
	assert.NotContains(t, gotQuery, "page")
}

func TestGetPlant_DecodesRecord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plants/42", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"id":42,"slug":"rosa-rubiginosa","scientific_name":"Rosa rubiginosa","common_name":"Sweet briar","family":"Rosaceae","genus":"Rosa","synonyms":["Rosa eglanteria"]}}`))
	})

	p, err := c.GetPlant(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, "rosa-rubiginosa", p.Slug)
	assert.Equal(t, "Rosa rubiginosa", p.ScientificName)
	assert.Equal(t, "Rosaceae", p.Family)
	assert.Equal(t, []string{"Rosa eglanteria"}, p.Synonyms)
}

func TestGet_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Not Found"}`, http.StatusNotFound)
	})

	_, err := c.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_UpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.Get(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "502")
}

func TestAuxiliaryListings_Paths(t *testing.T) {
	cases := []struct {
		name     string
		call     func(c *Client) error
		wantPath string
		wantQ    map[string]string
	}{
		{
			name:     "species",
			call:     func(c *Client) error { _, err := c.Species(context.Background(), 7, 2); return err },
			wantPath: "/plants/7/species",
			wantQ:    map[string]string{"page": "2"},
		},
		{
			name:     "families",
			call:     func(c *Client) error { _, err := c.Families(context.Background(), 0); return err },
			wantPath: "/families",
		},
		{
			name:     "plants by family",
			call:     func(c *Client) error { _, err := c.PlantsByFamily(context.Background(), "rosaceae", 1); return err },
			wantPath: "/plants",
			wantQ:    map[string]string{"filter[family_name]": "rosaceae", "page": "1"},
		},
		{
			name:     "genera",
			call:     func(c *Client) error { _, err := c.Genera(context.Background(), 0); return err },
			wantPath: "/genus",
		},
		{
			name:     "plants by genus",
			call:     func(c *Client) error { _, err := c.PlantsByGenus(context.Background(), "rosa", 0); return err },
			wantPath: "/plants",
			wantQ:    map[string]string{"filter[genus_name]": "rosa"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotPath string
			var gotQuery map[string][]string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.Query()
				_, _ = w.Write([]byte(`{"data":[]}`))
			})

			require.NoError(t, tc.call(c))
			assert.Equal(t, tc.wantPath, gotPath)
			assert.Equal(t, []string{"test-token"}, gotQuery["token"])
			for k, v := range tc.wantQ {
				assert.Equal(t, []string{v}, gotQuery[k], k)
			}
		})
	}
}

func TestEnvelope_PassesThroughUnchanged(t *testing.T) {
	const upstream = `{"data":[],"links":{"self":"/api/v1/plants/search?q=rose"},"meta":{"total":0}}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(upstream))
	})

	env, err := c.Search(context.Background(), "rose", 0)
	require.NoError(t, err)

	// Zero upstream matches round-trip as an empty data array, not an error.
	out, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, upstream, string(out))
}
