// Package trefle wraps the Trefle botanical catalog HTTP API. The client
// translates internal filter parameters into Trefle's query-string dialect,
// attaches the API token to every call and returns the upstream JSON
// envelope untouched so handlers can pass it straight through to clients.
package trefle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound is returned when the catalog has no record for the
// requested id. Handlers translate it to a 404.
var ErrNotFound = errors.New("trefle: record not found")

// Client is a reusable catalog API client. Construct it once at process
// start and share it across requests; it holds no per-request state.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// New creates a catalog client. The token is mandatory: without it every
// upstream call would fail with 401, so construction fails fast instead.
func New(baseURL, token string) (*Client, error) {
	if token == "" {
		return nil, errors.New("trefle: API token is required")
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Envelope mirrors Trefle's response shape: {data, links, meta} for
// listings and {data} for single records. The fields stay raw JSON so
// responses reach the mobile client byte-for-byte as the catalog sent
// them.
type Envelope struct {
	Data  json.RawMessage `json:"data"`
	Links json.RawMessage `json:"links,omitempty"`
	Meta  json.RawMessage `json:"meta,omitempty"`
}

// Plant holds the catalog fields this service copies into saved and
// favorited records. It is decoded from the single-record envelope.
type Plant struct {
	ID               int64    `json:"id"`
	Slug             string   `json:"slug"`
	ScientificName   string   `json:"scientific_name"`
	CommonName       string   `json:"common_name"`
	Family           string   `json:"family"`
	FamilyCommonName string   `json:"family_common_name"`
	Genus            string   `json:"genus"`
	ImageURL         string   `json:"image_url"`
	Year             int      `json:"year"`
	Author           string   `json:"author"`
	Bibliography     string   `json:"bibliography"`
	Status           string   `json:"status"`
	Rank             string   `json:"rank"`
	Synonyms         []string `json:"synonyms"`
}

// ListFilters narrows the plant listing. Zero values mean "filter not
// applied"; the boolean flags are only forwarded when true, matching the
// catalog's filter semantics.
type ListFilters struct {
	CommonName        string
	Family            string
	Genus             string
	Edible            bool
	Vegetable         bool
	FlowerConspicuous bool
}

// Search performs a free-text plant name search.
func (c *Client) Search(ctx context.Context, query string, page int) (*Envelope, error) {
	q := url.Values{}
	q.Set("q", query)
	return c.get(ctx, "/plants/search", q, page)
}

// List returns the filterable plant listing.
func (c *Client) List(ctx context.Context, f ListFilters, page int) (*Envelope, error) {
	q := url.Values{}
	if f.CommonName != "" {
		q.Set("filter[common_name]", f.CommonName)
	}
	if f.Family != "" {
		q.Set("filter[family_name]", f.Family)
	}
	if f.Genus != "" {
		q.Set("filter[genus_name]", f.Genus)
	}
	if f.Edible {
		q.Set("filter[edible]", "true")
	}
	if f.Vegetable {
		q.Set("filter[vegetable]", "true")
	}
	if f.FlowerConspicuous {
		q.Set("filter[flower_conspicuous]", "true")
	}
	return c.get(ctx, "/plants", q, page)
}

// Get fetches a single record's raw envelope by catalog id.
func (c *Client) Get(ctx context.Context, id int64) (*Envelope, error) {
	return c.get(ctx, fmt.Sprintf("/plants/%d", id), nil, 0)
}

// GetPlant fetches and decodes a single catalog record. It is used when
// saving or favoriting, where the canonical botanical fields are copied
// into the user's row.
func (c *Client) GetPlant(ctx context.Context, id int64) (*Plant, error) {
	env, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var p Plant
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, fmt.Errorf("trefle: decode plant %d: %w", id, err)
	}
	return &p, nil
}

// Species lists the species belonging to a plant.
func (c *Client) Species(ctx context.Context, id int64, page int) (*Envelope, error) {
	return c.get(ctx, fmt.Sprintf("/plants/%d/species", id), nil, page)
}

// Families lists plant families.
func (c *Client) Families(ctx context.Context, page int) (*Envelope, error) {
	return c.get(ctx, "/families", nil, page)
}

// PlantsByFamily lists plants in a family, addressed by slug.
func (c *Client) PlantsByFamily(ctx context.Context, slug string, page int) (*Envelope, error) {
	q := url.Values{}
	q.Set("filter[family_name]", slug)
	return c.get(ctx, "/plants", q, page)
}

// Genera lists plant genera.
func (c *Client) Genera(ctx context.Context, page int) (*Envelope, error) {
	return c.get(ctx, "/genus", nil, page)
}

// PlantsByGenus lists plants in a genus, addressed by slug.
func (c *Client) PlantsByGenus(ctx context.Context, slug string, page int) (*Envelope, error) {
	q := url.Values{}
	q.Set("filter[genus_name]", slug)
	return c.get(ctx, "/plants", q, page)
}

// get performs a GET against the catalog, appending the token and the
// optional page parameter. Calls are synchronous with no retry; a slow
// upstream is bounded only by the transport timeout.
func (c *Client) get(ctx context.Context, path string, query url.Values, page int) (*Envelope, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("token", c.token)
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("trefle: build request: %w", err)
	}
	req.URL.RawQuery = query.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trefle: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("trefle: %s: unexpected status %d: %s", path, resp.StatusCode, string(body))
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("trefle: %s: decode response: %w", path, err)
	}
	return &env, nil
}
