package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sproutie/sproutie-server/internal/model"
)

type FavoriteRepo struct{ DB *sql.DB }

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{DB: db} }

// ErrFavoriteExists is returned when the (subject, catalog id) pair is
// already favorited.
var ErrFavoriteExists = errors.New("plant already favorited")

// Create inserts a favorite and returns its ID. The unique key on
// (subject_id, trefle_id) makes double-favoriting a conflict.
func (r *FavoriteRepo) Create(ctx context.Context, f *model.FavoritePlant) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO favorite_plants (subject_id,trefle_id,slug,scientific_name,common_name,family,genus) VALUES (?,?,?,?,?,?,?)",
		f.SubjectID, f.TrefleID, f.Slug, f.ScientificName, f.CommonName, f.Family, f.Genus)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrFavoriteExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Delete removes the favorite for (subject, catalog id). Deleting an
// absent favorite is not an error; unfavorite is idempotent.
func (r *FavoriteRepo) Delete(ctx context.Context, subjectID string, trefleID int64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM favorite_plants WHERE subject_id=? AND trefle_id=?", subjectID, trefleID)
	return err
}

// ListByOwner returns the subject's favorites newest first with the
// total count for pagination.
func (r *FavoriteRepo) ListByOwner(ctx context.Context, subjectID string, page, pageSize int) ([]model.FavoritePlant, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM favorite_plants WHERE subject_id=?", subjectID).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := pageSize
	offset := (page - 1) * pageSize
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,subject_id,trefle_id,slug,scientific_name,common_name,family,genus,created_at FROM favorite_plants WHERE subject_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		subjectID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.FavoritePlant, 0, limit)
	for rows.Next() {
		var f model.FavoritePlant
		if err := rows.Scan(&f.ID, &f.SubjectID, &f.TrefleID, &f.Slug, &f.ScientificName,
			&f.CommonName, &f.Family, &f.Genus, &f.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
