package repository

import (
	"context"
	"database/sql"

	"github.com/sproutie/sproutie-server/internal/model"
)

type SearchRepo struct{ DB *sql.DB }

func NewSearchRepo(db *sql.DB) *SearchRepo { return &SearchRepo{DB: db} }

// Insert appends one search-history entry. The table is append-only;
// callers treat failures as best effort and only log them.
func (r *SearchRepo) Insert(ctx context.Context, subjectID, query string, resultCount int) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO search_history (subject_id, query, result_count) VALUES (?,?,?)",
		subjectID, query, resultCount)
	return err
}

// ListByOwner returns the subject's search history newest first with the
// total count for pagination.
func (r *SearchRepo) ListByOwner(ctx context.Context, subjectID string, page, pageSize int) ([]model.SearchRecord, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM search_history WHERE subject_id=?", subjectID).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := pageSize
	offset := (page - 1) * pageSize
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,subject_id,query,result_count,created_at FROM search_history WHERE subject_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		subjectID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.SearchRecord, 0, limit)
	for rows.Next() {
		var s model.SearchRecord
		if err := rows.Scan(&s.ID, &s.SubjectID, &s.Query, &s.ResultCount, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
