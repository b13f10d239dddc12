package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/setlistr/setlistr/internal/domain/setlist"
	"github.com/setlistr/setlistr/internal/pkg/errors"
)

const setlistColumns = `id, band_id, name, venue, show_date, sets_config, created_at, updated_at`

// SetlistRepository implements setlist.Repository
type SetlistRepository struct {
	db *DB
}

// NewSetlistRepository creates a new setlist repository
func NewSetlistRepository(db *DB) setlist.Repository {
	return &SetlistRepository{db: db}
}

// Create creates a setlist and its items
func (r *SetlistRepository) Create(ctx context.Context, s *setlist.Setlist) error {
	now := time.Now().UTC().Truncate(time.Second)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = now
	s.UpdatedAt = now

	sets, err := json.Marshal(s.SetsConfig)
	if err != nil {
		return errors.Internal("Failed to encode sets", err)
	}

	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO setlists (id, band_id, name, venue, show_date, sets_config, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := r.db.exec(ctx, "setlists", query,
			s.ID, s.BandID, s.Name, s.Venue, s.Date, string(sets), now.Unix(), now.Unix())
		if err != nil {
			if isForeignKeyViolation(err) {
				return errors.NotFound("Band")
			}
			return errors.DatabaseError("Failed to create setlist", err)
		}
		return r.insertItems(ctx, s.ID, s.Items)
	})
}

// GetByID retrieves a setlist by ID
func (r *SetlistRepository) GetByID(ctx context.Context, id string) (*setlist.Setlist, error) {
	s, err := scanSetlist(r.db.queryRow(ctx, "setlists", "SELECT "+setlistColumns+" FROM setlists WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Setlist")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get setlist", err)
	}
	return s, nil
}

// Items retrieves a setlist's items
func (r *SetlistRepository) Items(ctx context.Context, setlistID string) ([]setlist.Item, error) {
	rows, err := r.db.query(ctx, "setlist_items", `
		SELECT set_index, position, song_id, is_pinned
		FROM setlist_items
		WHERE setlist_id = ?
		ORDER BY set_index, position
	`, setlistID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list setlist items", err)
	}
	defer rows.Close()

	items := []setlist.Item{}
	for rows.Next() {
		var it setlist.Item
		var songID sql.NullString
		if err := rows.Scan(&it.SetIndex, &it.Position, &songID, &it.IsPinned); err != nil {
			return nil, errors.DatabaseError("Failed to scan setlist item", err)
		}
		it.SongID = stringPtr(songID)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list setlist items", err)
	}

	return items, nil
}

// ListByBand retrieves a band's setlists
func (r *SetlistRepository) ListByBand(ctx context.Context, bandID string) ([]*setlist.Setlist, error) {
	rows, err := r.db.query(ctx, "setlists",
		"SELECT "+setlistColumns+" FROM setlists WHERE band_id = ? ORDER BY LOWER(name), id", bandID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list setlists", err)
	}
	defer rows.Close()

	setlists := []*setlist.Setlist{}
	for rows.Next() {
		s, err := scanSetlist(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan setlist", err)
		}
		setlists = append(setlists, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list setlists", err)
	}

	return setlists, nil
}

// Update updates a setlist and, when items is non-nil, replaces its items
func (r *SetlistRepository) Update(ctx context.Context, s *setlist.Setlist, items []setlist.Item) error {
	s.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	sets, err := json.Marshal(s.SetsConfig)
	if err != nil {
		return errors.Internal("Failed to encode sets", err)
	}

	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		result, err := r.db.exec(ctx, "setlists", `
			UPDATE setlists
			SET name = ?, venue = ?, show_date = ?, sets_config = ?, updated_at = ?
			WHERE id = ?
		`, s.Name, s.Venue, s.Date, string(sets), s.UpdatedAt.Unix(), s.ID)
		if err != nil {
			return errors.DatabaseError("Failed to update setlist", err)
		}
		if err := checkAffected(result, "Setlist"); err != nil {
			return err
		}

		if items == nil {
			return nil
		}
		return r.replaceItems(ctx, s.ID, items)
	})
}

// ReplaceItems replaces all items of a setlist
func (r *SetlistRepository) ReplaceItems(ctx context.Context, setlistID string, items []setlist.Item) error {
	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		result, err := r.db.exec(ctx, "setlists",
			"UPDATE setlists SET updated_at = ? WHERE id = ?", time.Now().Unix(), setlistID)
		if err != nil {
			return errors.DatabaseError("Failed to update setlist", err)
		}
		if err := checkAffected(result, "Setlist"); err != nil {
			return err
		}
		return r.replaceItems(ctx, setlistID, items)
	})
}

func (r *SetlistRepository) replaceItems(ctx context.Context, setlistID string, items []setlist.Item) error {
	if _, err := r.db.exec(ctx, "setlist_items", "DELETE FROM setlist_items WHERE setlist_id = ?", setlistID); err != nil {
		return errors.DatabaseError("Failed to clear setlist items", err)
	}
	return r.insertItems(ctx, setlistID, items)
}

func (r *SetlistRepository) insertItems(ctx context.Context, setlistID string, items []setlist.Item) error {
	for _, it := range items {
		_, err := r.db.exec(ctx, "setlist_items", `
			INSERT INTO setlist_items (setlist_id, set_index, position, song_id, is_pinned)
			VALUES (?, ?, ?, ?, ?)
		`, setlistID, it.SetIndex, it.Position, nullString(it.SongID), it.IsPinned)
		if err != nil {
			if isUniqueViolation(err) {
				return errors.Conflict("Setlist slot listed twice")
			}
			return errors.DatabaseError("Failed to insert setlist item", err)
		}
	}
	return nil
}

// SetPinned sets the pin flag of one slot
func (r *SetlistRepository) SetPinned(ctx context.Context, setlistID string, setIndex, position int, pinned bool) error {
	result, err := r.db.exec(ctx, "setlist_items", `
		UPDATE setlist_items SET is_pinned = ?
		WHERE setlist_id = ? AND set_index = ? AND position = ?
	`, pinned, setlistID, setIndex, position)
	if err != nil {
		return errors.DatabaseError("Failed to update setlist item", err)
	}
	return checkAffected(result, "Setlist slot")
}

// Delete deletes a setlist and its items
func (r *SetlistRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := r.db.exec(ctx, "setlist_items", "DELETE FROM setlist_items WHERE setlist_id = ?", id); err != nil {
			return errors.DatabaseError("Failed to delete setlist items", err)
		}

		result, err := r.db.exec(ctx, "setlists", "DELETE FROM setlists WHERE id = ?", id)
		if err != nil {
			return errors.DatabaseError("Failed to delete setlist", err)
		}
		return checkAffected(result, "Setlist")
	})
}

func scanSetlist(row rowScanner) (*setlist.Setlist, error) {
	var s setlist.Setlist
	var sets string
	var createdAt, updatedAt int64
	if err := row.Scan(&s.ID, &s.BandID, &s.Name, &s.Venue, &s.Date, &sets, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sets), &s.SetsConfig); err != nil {
		return nil, err
	}
	s.CreatedAt = unix(createdAt)
	s.UpdatedAt = unix(updatedAt)
	return &s, nil
}
