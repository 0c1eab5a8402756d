package warnings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"automod-bot/model"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("warning not found")

// VersionNotFoundError is returned by Revert when the requested version doesn't exist.
type VersionNotFoundError struct {
	WarningID int64
	Version   int
	Available []int
}

func (e *VersionNotFoundError) Error() string {
	versions := make([]string, len(e.Available))
	for i, v := range e.Available {
		versions[i] = strconv.Itoa(v)
	}
	return fmt.Sprintf("warning %d has no version %d, available versions: %s", e.WarningID, e.Version, strings.Join(versions, ", "))
}

const insertWarningQuery = `INSERT INTO warnings (guild_id, warning_id, version, user_id, moderator_id, reason, permanent, created_at, edited_by, edited_at, valid_until)
			  VALUES (:guild_id, :warning_id, :version, :user_id, :moderator_id, :reason, :permanent, :created_at, :edited_by, :edited_at, :valid_until)`

func insertVersion(ctx context.Context, tx *sqlx.Tx, w *model.Warning) error {
	result, err := tx.NamedExecContext(ctx, insertWarningQuery, w)
	if err != nil {
		return fmt.Errorf("failed to insert warning %d version %d: %w", w.WarningID, w.Version, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	w.RowID = id
	return nil
}

// Create stores version 1 of a new warning. The warning ID is the next free one in the guild.
func (s *Store) Create(ctx context.Context, guildID string, data model.WarningData) (*model.Warning, error) {
	w := &model.Warning{
		GuildID:     guildID,
		Version:     1,
		UserID:      data.UserID,
		ModeratorID: data.ModeratorID,
		Reason:      data.Reason,
		Permanent:   data.Permanent,
		CreatedAt:   s.Now().Unix(),
	}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var maxID int64
		if err := tx.GetContext(ctx, &maxID, "SELECT COALESCE(MAX(warning_id), 0) FROM warnings WHERE guild_id = ?", guildID); err != nil {
			return fmt.Errorf("failed to get next warning id for guild %s: %w", guildID, err)
		}
		w.WarningID = maxID + 1
		return insertVersion(ctx, tx, w)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Update expires the current version and stores data as the next one, atomically.
// The original issue time is carried over; editorID and now are recorded as the edit.
func (s *Store) Update(ctx context.Context, guildID string, warningID int64, data model.WarningData, editorID string) (*model.Warning, error) {
	now := s.Now().Unix()
	var next *model.Warning
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var current model.Warning
		err := tx.GetContext(ctx, &current, "SELECT * FROM warnings WHERE guild_id = ? AND warning_id = ? AND valid_until IS NULL", guildID, warningID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get current version of warning %d: %w", warningID, err)
		}

		var maxVersion int
		if err := tx.GetContext(ctx, &maxVersion, "SELECT MAX(version) FROM warnings WHERE guild_id = ? AND warning_id = ?", guildID, warningID); err != nil {
			return fmt.Errorf("failed to get latest version of warning %d: %w", warningID, err)
		}

		result, err := tx.ExecContext(ctx, "UPDATE warnings SET valid_until = ? WHERE row_id = ? AND valid_until IS NULL", now, current.RowID)
		if err != nil {
			return fmt.Errorf("failed to expire warning %d version %d: %w", warningID, current.Version, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected for warning %d: %w", warningID, err)
		}
		if rowsAffected != 1 {
			return fmt.Errorf("expected to expire one version of warning %d, expired %d", warningID, rowsAffected)
		}

		next = &model.Warning{
			GuildID:     guildID,
			WarningID:   warningID,
			Version:     maxVersion + 1,
			UserID:      data.UserID,
			ModeratorID: data.ModeratorID,
			Reason:      data.Reason,
			Permanent:   data.Permanent,
			CreatedAt:   current.CreatedAt,
			EditedBy:    sql.NullString{String: editorID, Valid: true},
			EditedAt:    sql.NullInt64{Int64: now, Valid: true},
		}
		return insertVersion(ctx, tx, next)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Revert makes the content of targetVersion current again as a brand-new version.
func (s *Store) Revert(ctx context.Context, guildID string, warningID int64, targetVersion int, editorID string) (*model.Warning, error) {
	history, err := s.History(ctx, guildID, warningID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrNotFound
	}

	var target *model.Warning
	available := make([]int, 0, len(history))
	for i := range history {
		available = append(available, history[i].Version)
		if history[i].Version == targetVersion {
			target = &history[i]
		}
	}
	if target == nil {
		sort.Ints(available)
		return nil, &VersionNotFoundError{WarningID: warningID, Version: targetVersion, Available: available}
	}
	return s.Update(ctx, guildID, warningID, target.Data(), editorID)
}

// Current returns the current version of a warning.
func (s *Store) Current(ctx context.Context, guildID string, warningID int64) (*model.Warning, error) {
	var w model.Warning
	err := s.DB.GetContext(ctx, &w, "SELECT * FROM warnings WHERE guild_id = ? AND warning_id = ? AND valid_until IS NULL", guildID, warningID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get warning %d in guild %s: %w", warningID, guildID, err)
	}
	return &w, nil
}

// History returns every version of a warning, oldest first.
func (s *Store) History(ctx context.Context, guildID string, warningID int64) ([]model.Warning, error) {
	var versions []model.Warning
	err := s.DB.SelectContext(ctx, &versions, "SELECT * FROM warnings WHERE guild_id = ? AND warning_id = ? ORDER BY version ASC", guildID, warningID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history of warning %d in guild %s: %w", warningID, guildID, err)
	}
	return versions, nil
}

// ListCurrentByUser returns the current version of every warning a user has in a guild.
func (s *Store) ListCurrentByUser(ctx context.Context, guildID, userID string) ([]model.Warning, error) {
	var records []model.Warning
	err := s.DB.SelectContext(ctx, &records, "SELECT * FROM warnings WHERE guild_id = ? AND user_id = ? AND valid_until IS NULL ORDER BY warning_id ASC", guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get warnings for user %s in guild %s: %w", userID, guildID, err)
	}
	return records, nil
}

// ListCurrentByGuild returns the current version of every warning in a guild.
func (s *Store) ListCurrentByGuild(ctx context.Context, guildID string) ([]model.Warning, error) {
	var records []model.Warning
	err := s.DB.SelectContext(ctx, &records, "SELECT * FROM warnings WHERE guild_id = ? AND valid_until IS NULL ORDER BY warning_id ASC", guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get warnings for guild %s: %w", guildID, err)
	}
	return records, nil
}
