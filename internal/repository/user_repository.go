package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sproutie/sproutie-server/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrUserExists = errors.New("user already exists")

// Create inserts a user profile and returns its ID. The subject id is
// unique at the storage layer; a second registration callback for the
// same subject returns ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, subjectID, email, displayName string, emailVerified bool) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (subject_id, email, display_name, email_verified) VALUES (?,?,?,?)",
		subjectID, email, displayName, emailVerified)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetBySubject fetches the active user for an identity-provider subject id.
func (r *UserRepo) GetBySubject(ctx context.Context, subjectID string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,subject_id,email,display_name,email_verified,is_active,created_at,updated_at FROM users WHERE subject_id=? AND is_active=1 LIMIT 1",
		subjectID).Scan(&u.ID, &u.SubjectID, &u.Email, &u.DisplayName, &u.EmailVerified, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// UpdateProfile applies partial profile changes. Nil fields are left
// untouched. Returns sql.ErrNoRows when the subject has no active account.
func (r *UserRepo) UpdateProfile(ctx context.Context, subjectID string, displayName *string, emailVerified *bool) error {
	set := []string{"updated_at=NOW()"}
	args := []any{}
	if displayName != nil {
		set = append(set, "display_name=?")
		args = append(args, *displayName)
	}
	if emailVerified != nil {
		set = append(set, "email_verified=?")
		args = append(args, *emailVerified)
	}
	args = append(args, subjectID)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(set, ",")+" WHERE subject_id=? AND is_active=1", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "no such user" from "no-op update": a no-op still
		// matches the row, and updated_at=NOW() makes the statement
		// change the row in practice.
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM users WHERE subject_id=? AND is_active=1 LIMIT 1", subjectID).Scan(&exists); err != nil {
			return err
		}
	}
	return nil
}
