package model

import (
	"database/sql"
	"time"
)

// Warning is one version of a warning. The table will be named 'warnings'.
// (guild_id, warning_id) is the logical identity; the row whose ValidUntil is NULL is the current version.
type Warning struct {
	RowID       int64          `db:"row_id"` // Primary Key, Auto-increment
	GuildID     string         `db:"guild_id"`
	WarningID   int64          `db:"warning_id"`
	Version     int            `db:"version"`
	UserID      string         `db:"user_id"`
	ModeratorID string         `db:"moderator_id"`
	Reason      string         `db:"reason"`
	Permanent   bool           `db:"permanent"`
	CreatedAt   int64          `db:"created_at"` // Unix seconds of version 1, carried forward
	EditedBy    sql.NullString `db:"edited_by"`
	EditedAt    sql.NullInt64  `db:"edited_at"`
	ValidUntil  sql.NullInt64  `db:"valid_until"`
}

// WarningData holds the content fields a new version is built from.
type WarningData struct {
	UserID      string
	ModeratorID string
	Reason      string
	Permanent   bool
}

func (w *Warning) IsCurrent() bool {
	return !w.ValidUntil.Valid
}

func (w *Warning) Data() WarningData {
	return WarningData{
		UserID:      w.UserID,
		ModeratorID: w.ModeratorID,
		Reason:      w.Reason,
		Permanent:   w.Permanent,
	}
}

// Expired reports whether the warning no longer counts. This is computed at read time and never stored.
func (w *Warning) Expired(expiresAfter time.Duration, now time.Time) bool {
	if expiresAfter <= 0 || w.Permanent {
		return false
	}
	return !time.Unix(w.CreatedAt, 0).Add(expiresAfter).After(now)
}
