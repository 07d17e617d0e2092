package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sproutie/sproutie-server/internal/model"
)

type PlantRepo struct{ DB *sql.DB }

func NewPlantRepo(db *sql.DB) *PlantRepo { return &PlantRepo{DB: db} }

// ErrPlantSaved is returned when the user already has an entry for the
// same catalog record in their collection.
var ErrPlantSaved = errors.New("plant already saved")

const savedPlantCols = "id,subject_id,trefle_id,slug,scientific_name,common_name,family,genus,image_url," +
	"nickname,notes,location,planted_date,harvest_date,photos,growth_stages,care_reminders," +
	"is_active,created_at,updated_at"

// Create inserts a saved plant and returns its ID. The composite unique
// key on (subject_id, trefle_id) turns a concurrent duplicate save into
// ErrPlantSaved instead of a second row.
func (r *PlantRepo) Create(ctx context.Context, p *model.SavedPlant) (uint64, error) {
	photos, err := json.Marshal(orEmpty(p.Photos))
	if err != nil {
		return 0, err
	}
	stages, err := json.Marshal(orEmpty(p.GrowthStages))
	if err != nil {
		return 0, err
	}
	reminders, err := json.Marshal(orEmpty(p.CareReminders))
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO saved_plants
			(subject_id,trefle_id,slug,scientific_name,common_name,family,genus,image_url,
			 nickname,notes,location,planted_date,harvest_date,photos,growth_stages,care_reminders)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.SubjectID, p.TrefleID, p.Slug, p.ScientificName, p.CommonName, p.Family, p.Genus, p.ImageURL,
		p.Nickname, p.Notes, p.Location, p.PlantedDate, p.HarvestDate, photos, stages, reminders)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrPlantSaved
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByIDAndOwner fetches a saved plant only when it belongs to the
// given subject. Missing or foreign rows both surface as sql.ErrNoRows
// so callers cannot tell other users' record ids apart from absent ones.
func (r *PlantRepo) GetByIDAndOwner(ctx context.Context, id uint64, subjectID string) (model.SavedPlant, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+savedPlantCols+" FROM saved_plants WHERE id=? AND subject_id=? LIMIT 1",
		id, subjectID)
	return scanSavedPlant(row)
}

// DeleteByIDAndOwner removes a saved plant owned by the subject and
// returns the removed record. sql.ErrNoRows means no owned row matched.
func (r *PlantRepo) DeleteByIDAndOwner(ctx context.Context, id uint64, subjectID string) (model.SavedPlant, error) {
	p, err := r.GetByIDAndOwner(ctx, id, subjectID)
	if err != nil {
		return model.SavedPlant{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM saved_plants WHERE id=? AND subject_id=?", id, subjectID)
	if err != nil {
		return model.SavedPlant{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.SavedPlant{}, err
	}
	if n == 0 {
		return model.SavedPlant{}, sql.ErrNoRows
	}
	return p, nil
}

// ListByOwner returns the subject's active saved plants newest first,
// along with the total count for pagination.
func (r *PlantRepo) ListByOwner(ctx context.Context, subjectID string, page, pageSize int) ([]model.SavedPlant, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM saved_plants WHERE subject_id=? AND is_active=1",
		subjectID).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := pageSize
	offset := (page - 1) * pageSize
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+savedPlantCols+" FROM saved_plants WHERE subject_id=? AND is_active=1 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		subjectID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.SavedPlant, 0, limit)
	for rows.Next() {
		p, err := scanSavedPlant(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface{ Scan(dest ...any) error }

func scanSavedPlant(s scanner) (model.SavedPlant, error) {
	var (
		p                         model.SavedPlant
		nickname, notes, location sql.NullString
		photos, stages, reminders []byte
	)
	err := s.Scan(&p.ID, &p.SubjectID, &p.TrefleID, &p.Slug, &p.ScientificName, &p.CommonName,
		&p.Family, &p.Genus, &p.ImageURL, &nickname, &notes, &location,
		&p.PlantedDate, &p.HarvestDate, &photos, &stages, &reminders,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.SavedPlant{}, err
	}
	p.Nickname = nickname.String
	p.Notes = notes.String
	p.Location = location.String
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &p.Photos); err != nil {
			return model.SavedPlant{}, err
		}
	}
	if len(stages) > 0 {
		if err := json.Unmarshal(stages, &p.GrowthStages); err != nil {
			return model.SavedPlant{}, err
		}
	}
	if len(reminders) > 0 {
		if err := json.Unmarshal(reminders, &p.CareReminders); err != nil {
			return model.SavedPlant{}, err
		}
	}
	return p, nil
}

// orEmpty keeps JSON columns as [] instead of null for nil slices.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
