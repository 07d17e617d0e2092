package model

import "time"

// User represents an application user record as stored in the `users`
// table. Accounts are created by the mobile client right after the
// external identity provider finishes registration, so the provider's
// subject id is the primary lookup key. Credentials never touch this
// service; password handling lives entirely in the identity provider.
//
// Fields:
//
//	ID            – primary key identifier of the user.
//	SubjectID     – unique identifier issued by the identity provider.
//	Email         – email address, stored lowercased.
//	DisplayName   – optional display name chosen by the user.
//	EmailVerified – whether the identity provider verified the email.
//	IsActive      – whether the account is active; users are never
//	                hard-deleted, only deactivated.
//	CreatedAt     – timestamp of creation.
//	UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64    // users.id
	SubjectID     string    // users.subject_id
	Email         string    // users.email
	DisplayName   string    // users.display_name
	EmailVerified bool      // users.email_verified
	IsActive      bool      // users.is_active
	CreatedAt     time.Time // users.created_at
	UpdatedAt     time.Time // users.updated_at
}
