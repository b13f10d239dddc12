package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/setlistr/setlistr/internal/domain/song"
	"github.com/setlistr/setlistr/internal/domain/template"
	"github.com/setlistr/setlistr/internal/pkg/errors"
)

const songColumns = `id, band_id, title, artist, vocal_intensity, energy_level, song_key, tempo,
	duration_seconds, notes, created_at, updated_at`

// SongRepository implements song.Repository
type SongRepository struct {
	db *DB
}

// NewSongRepository creates a new song repository
func NewSongRepository(db *DB) song.Repository {
	return &SongRepository{db: db}
}

// Create creates a new song
func (r *SongRepository) Create(ctx context.Context, s *song.Song) error {
	now := time.Now().UTC().Truncate(time.Second)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO songs (id, band_id, title, artist, vocal_intensity, energy_level, song_key,
			tempo, duration_seconds, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.exec(ctx, "songs", query,
		s.ID, s.BandID, s.Title, s.Artist, s.VocalIntensity, s.EnergyLevel, s.Key,
		s.Tempo, s.DurationSeconds, s.Notes, now.Unix(), now.Unix(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.NotFound("Band")
		}
		return errors.DatabaseError("Failed to create song", err)
	}

	return nil
}

// GetByID retrieves a song by ID
func (r *SongRepository) GetByID(ctx context.Context, id string) (*song.Song, error) {
	s, err := scanSong(r.db.queryRow(ctx, "songs", "SELECT "+songColumns+" FROM songs WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Song")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get song", err)
	}
	return s, nil
}

// ListByBand retrieves a band's songs
func (r *SongRepository) ListByBand(ctx context.Context, bandID string) ([]*song.Song, error) {
	rows, err := r.db.query(ctx, "songs",
		"SELECT "+songColumns+" FROM songs WHERE band_id = ? ORDER BY LOWER(title), id", bandID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list songs", err)
	}
	defer rows.Close()

	songs := []*song.Song{}
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan song", err)
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list songs", err)
	}

	return songs, nil
}

// ExistingIDs returns which of ids are songs of bandID
func (r *SongRepository) ExistingIDs(ctx context.Context, bandID string, ids []string) (map[string]bool, error) {
	found := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, bandID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := r.db.query(ctx, "songs",
		"SELECT id FROM songs WHERE band_id = ? AND id IN ("+inClause(len(ids))+")", args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to look up songs", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.DatabaseError("Failed to scan song id", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to look up songs", err)
	}

	return found, nil
}

// Update updates a song
func (r *SongRepository) Update(ctx context.Context, s *song.Song) error {
	s.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	query := `
		UPDATE songs
		SET title = ?, artist = ?, vocal_intensity = ?, energy_level = ?, song_key = ?, tempo = ?,
			duration_seconds = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.exec(ctx, "songs", query,
		s.Title, s.Artist, s.VocalIntensity, s.EnergyLevel, s.Key, s.Tempo,
		s.DurationSeconds, s.Notes, s.UpdatedAt.Unix(), s.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update song", err)
	}

	return checkAffected(result, "Song")
}

// Delete deletes a song, empties the setlist slots holding it and unpins it
// from the band's templates
func (r *SongRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		var bandID string
		err := r.db.queryRow(ctx, "songs", "SELECT band_id FROM songs WHERE id = ?", id).Scan(&bandID)
		if err == sql.ErrNoRows {
			return errors.NotFound("Song")
		}
		if err != nil {
			return errors.DatabaseError("Failed to get song", err)
		}

		_, err = r.db.exec(ctx, "setlist_items",
			"UPDATE setlist_items SET song_id = NULL, is_pinned = ? WHERE song_id = ?", false, id)
		if err != nil {
			return errors.DatabaseError("Failed to clear setlist slots", err)
		}

		if err := r.unpinFromTemplates(ctx, bandID, id); err != nil {
			return err
		}

		result, err := r.db.exec(ctx, "songs", "DELETE FROM songs WHERE id = ?", id)
		if err != nil {
			return errors.DatabaseError("Failed to delete song", err)
		}
		return checkAffected(result, "Song")
	})
}

func (r *SongRepository) unpinFromTemplates(ctx context.Context, bandID, songID string) error {
	templates := NewTemplateRepository(r.db)
	list, err := templates.ListByBand(ctx, bandID)
	if err != nil {
		return err
	}
	for _, t := range list {
		sets, changed := template.WithoutSong(t.SetsConfig, songID)
		if !changed {
			continue
		}
		t.SetsConfig = sets
		if err := templates.Update(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func scanSong(row rowScanner) (*song.Song, error) {
	var s song.Song
	var createdAt, updatedAt int64
	err := row.Scan(
		&s.ID, &s.BandID, &s.Title, &s.Artist, &s.VocalIntensity, &s.EnergyLevel, &s.Key, &s.Tempo,
		&s.DurationSeconds, &s.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.CreatedAt = unix(createdAt)
	s.UpdatedAt = unix(updatedAt)
	return &s, nil
}
