package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync/atomic"

	"github.com/sproutie/sproutie-server/internal/model"
	"github.com/sproutie/sproutie-server/internal/repository"
	"github.com/sproutie/sproutie-server/internal/trefle"
)

// fakeCatalog implements Catalog in memory. Plants maps catalog ids to
// records; unknown ids return trefle.ErrNotFound. Err, when set, is
// returned by every call.
type fakeCatalog struct {
	Plants map[int64]trefle.Plant
	Env    *trefle.Envelope
	Err    error

	LastQuery   string
	LastFilters trefle.ListFilters
	LastPage    int
}

func (f *fakeCatalog) envelope() *trefle.Envelope {
	if f.Env != nil {
		return f.Env
	}
	return &trefle.Envelope{Data: json.RawMessage(`[]`), Meta: json.RawMessage(`{"total":0}`)}
}

func (f *fakeCatalog) Search(_ context.Context, query string, page int) (*trefle.Envelope, error) {
	f.LastQuery, f.LastPage = query, page
	if f.Err != nil {
		return nil, f.Err
	}
	return f.envelope(), nil
}

func (f *fakeCatalog) List(_ context.Context, filters trefle.ListFilters, page int) (*trefle.Envelope, error) {
	f.LastFilters, f.LastPage = filters, page
	if f.Err != nil {
		return nil, f.Err
	}
	return f.envelope(), nil
}

func (f *fakeCatalog) Get(_ context.Context, id int64) (*trefle.Envelope, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	p, ok := f.Plants[id]
	if !ok {
		return nil, trefle.ErrNotFound
	}
	data, _ := json.Marshal(p)
	return &trefle.Envelope{Data: data}, nil
}

func (f *fakeCatalog) GetPlant(ctx context.Context, id int64) (*trefle.Plant, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	p, ok := f.Plants[id]
	if !ok {
		return nil, trefle.ErrNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) Species(_ context.Context, id int64, page int) (*trefle.Envelope, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.envelope(), nil
}

func (f *fakeCatalog) Families(_ context.Context, page int) (*trefle.Envelope, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.envelope(), nil
}

func (f *fakeCatalog) PlantsByFamily(_ context.Context, slug string, page int) (*trefle.Envelope, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.envelope(), nil
}

func (f *fakeCatalog) Genera(_ context.Context, page int) (*trefle.Envelope, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.envelope(), nil
}

func (f *fakeCatalog) PlantsByGenus(_ context.Context, slug string, page int) (*trefle.Envelope, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.envelope(), nil
}

// fakePlantStore keeps saved plants in a slice and enforces the same
// (subject, trefle id) uniqueness the real table does.
type fakePlantStore struct {
	rows   []model.SavedPlant
	nextID atomic.Uint64
	Err    error
}

func (f *fakePlantStore) Create(_ context.Context, p *model.SavedPlant) (uint64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	for _, r := range f.rows {
		if r.SubjectID == p.SubjectID && r.TrefleID == p.TrefleID {
			return 0, repository.ErrPlantSaved
		}
	}
	id := f.nextID.Add(1)
	stored := *p
	stored.ID = id
	stored.IsActive = true
	f.rows = append(f.rows, stored)
	return id, nil
}

func (f *fakePlantStore) GetByIDAndOwner(_ context.Context, id uint64, subjectID string) (model.SavedPlant, error) {
	for _, r := range f.rows {
		if r.ID == id && r.SubjectID == subjectID {
			return r, nil
		}
	}
	return model.SavedPlant{}, sql.ErrNoRows
}

func (f *fakePlantStore) DeleteByIDAndOwner(_ context.Context, id uint64, subjectID string) (model.SavedPlant, error) {
	for i, r := range f.rows {
		if r.ID == id && r.SubjectID == subjectID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return r, nil
		}
	}
	return model.SavedPlant{}, sql.ErrNoRows
}

func (f *fakePlantStore) ListByOwner(_ context.Context, subjectID string, page, pageSize int) ([]model.SavedPlant, int64, error) {
	if f.Err != nil {
		return nil, 0, f.Err
	}
	var owned []model.SavedPlant
	for _, r := range f.rows {
		if r.SubjectID == subjectID && r.IsActive {
			owned = append(owned, r)
		}
	}
	// Newest first by insertion order.
	for i, j := 0, len(owned)-1; i < j; i, j = i+1, j-1 {
		owned[i], owned[j] = owned[j], owned[i]
	}
	total := int64(len(owned))
	start := (page - 1) * pageSize
	if start > len(owned) {
		start = len(owned)
	}
	end := start + pageSize
	if end > len(owned) {
		end = len(owned)
	}
	return owned[start:end], total, nil
}

// fakeFavoriteStore mirrors the favorite_plants uniqueness semantics.
type fakeFavoriteStore struct {
	rows   []model.FavoritePlant
	nextID atomic.Uint64
	Err    error
}

func (f *fakeFavoriteStore) Create(_ context.Context, fav *model.FavoritePlant) (uint64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	for _, r := range f.rows {
		if r.SubjectID == fav.SubjectID && r.TrefleID == fav.TrefleID {
			return 0, repository.ErrFavoriteExists
		}
	}
	id := f.nextID.Add(1)
	stored := *fav
	stored.ID = id
	f.rows = append(f.rows, stored)
	return id, nil
}

func (f *fakeFavoriteStore) Delete(_ context.Context, subjectID string, trefleID int64) error {
	if f.Err != nil {
		return f.Err
	}
	for i, r := range f.rows {
		if r.SubjectID == subjectID && r.TrefleID == trefleID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil // idempotent
}

func (f *fakeFavoriteStore) ListByOwner(_ context.Context, subjectID string, page, pageSize int) ([]model.FavoritePlant, int64, error) {
	if f.Err != nil {
		return nil, 0, f.Err
	}
	var owned []model.FavoritePlant
	for _, r := range f.rows {
		if r.SubjectID == subjectID {
			owned = append(owned, r)
		}
	}
	total := int64(len(owned))
	start := (page - 1) * pageSize
	if start > len(owned) {
		start = len(owned)
	}
	end := start + pageSize
	if end > len(owned) {
		end = len(owned)
	}
	return owned[start:end], total, nil
}

// fakeSearchStore records inserts; InsertErr simulates a history write
// failure without failing anything else.
type fakeSearchStore struct {
	Records   []model.SearchRecord
	InsertErr error
}

func (f *fakeSearchStore) Insert(_ context.Context, subjectID, query string, resultCount int) error {
	if f.InsertErr != nil {
		return f.InsertErr
	}
	f.Records = append(f.Records, model.SearchRecord{
		ID:          uint64(len(f.Records) + 1),
		SubjectID:   subjectID,
		Query:       query,
		ResultCount: resultCount,
	})
	return nil
}

func (f *fakeSearchStore) ListByOwner(_ context.Context, subjectID string, page, pageSize int) ([]model.SearchRecord, int64, error) {
	var owned []model.SearchRecord
	for _, r := range f.Records {
		if r.SubjectID == subjectID {
			owned = append(owned, r)
		}
	}
	return owned, int64(len(owned)), nil
}

// fakeUserStore keeps users keyed by subject id.
type fakeUserStore struct {
	users  map[string]model.User
	nextID atomic.Uint64
	Err    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, subjectID, email, displayName string, emailVerified bool) (uint64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	if _, ok := f.users[subjectID]; ok {
		return 0, repository.ErrUserExists
	}
	id := f.nextID.Add(1)
	f.users[subjectID] = model.User{
		ID:            id,
		SubjectID:     subjectID,
		Email:         email,
		DisplayName:   displayName,
		EmailVerified: emailVerified,
		IsActive:      true,
	}
	return id, nil
}

func (f *fakeUserStore) GetBySubject(_ context.Context, subjectID string) (model.User, error) {
	u, ok := f.users[subjectID]
	if !ok || !u.IsActive {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, subjectID string, displayName *string, emailVerified *bool) error {
	u, ok := f.users[subjectID]
	if !ok || !u.IsActive {
		return sql.ErrNoRows
	}
	if displayName != nil {
		u.DisplayName = *displayName
	}
	if emailVerified != nil {
		u.EmailVerified = *emailVerified
	}
	f.users[subjectID] = u
	return nil
}
