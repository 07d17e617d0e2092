// Package repository implements MySQL persistence for users and their
// plant collections. Sentinel errors let handlers distinguish failure
// scenarios: duplicate rows surface as conflict sentinels (backed by
// storage-level unique keys, so concurrent inserts cannot both win) and
// missing rows surface as sql.ErrNoRows.
package repository

import "strings"

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062). Both saved_plants and favorite_plants rely on composite
// unique keys, so a duplicate insert is the normal signal for "already
// saved/favorited".
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
