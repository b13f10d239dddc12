package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/pkg/errors"
)

const bandColumns = `id, name, slug, owner_id, created_at, updated_at`

// BandRepository implements band.Repository
type BandRepository struct {
	db *DB
}

// NewBandRepository creates a new band repository
func NewBandRepository(db *DB) band.Repository {
	return &BandRepository{db: db}
}

// Create creates a new band
func (r *BandRepository) Create(ctx context.Context, b *band.Band) error {
	now := time.Now().UTC().Truncate(time.Second)
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = now
	b.UpdatedAt = now

	query := `
		INSERT INTO bands (id, name, slug, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.exec(ctx, "bands", query, b.ID, b.Name, b.Slug, b.OwnerID, now.Unix(), now.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("Slug already in use")
		}
		return errors.DatabaseError("Failed to create band", err)
	}

	return nil
}

// GetByID retrieves a band by ID
func (r *BandRepository) GetByID(ctx context.Context, id string) (*band.Band, error) {
	return r.getOne(ctx, "SELECT "+bandColumns+" FROM bands WHERE id = ?", id)
}

// GetBySlug retrieves a band by slug
func (r *BandRepository) GetBySlug(ctx context.Context, slug string) (*band.Band, error) {
	return r.getOne(ctx, "SELECT "+bandColumns+" FROM bands WHERE slug = ?", slug)
}

func (r *BandRepository) getOne(ctx context.Context, query string, arg any) (*band.Band, error) {
	b, err := scanBand(r.db.queryRow(ctx, "bands", query, arg))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Band")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get band", err)
	}
	return b, nil
}

// ListByOwner retrieves an owner's bands
func (r *BandRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*band.Band, error) {
	rows, err := r.db.query(ctx, "bands",
		"SELECT "+bandColumns+" FROM bands WHERE owner_id = ? ORDER BY LOWER(name), id", ownerID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list bands", err)
	}
	defer rows.Close()

	bands := []*band.Band{}
	for rows.Next() {
		b, err := scanBand(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan band", err)
		}
		bands = append(bands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list bands", err)
	}

	return bands, nil
}

// SlugExists reports whether slug is taken
func (r *BandRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := r.db.queryRow(ctx, "bands", "SELECT COUNT(*) FROM bands WHERE slug = ?", slug).Scan(&n)
	if err != nil {
		return false, errors.DatabaseError("Failed to check slug", err)
	}
	return n > 0, nil
}

// Update updates a band
func (r *BandRepository) Update(ctx context.Context, b *band.Band) error {
	b.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	result, err := r.db.exec(ctx, "bands",
		"UPDATE bands SET name = ?, slug = ?, updated_at = ? WHERE id = ?",
		b.Name, b.Slug, b.UpdatedAt.Unix(), b.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("Slug already in use")
		}
		return errors.DatabaseError("Failed to update band", err)
	}

	return checkAffected(result, "Band")
}

// Delete deletes a band and everything it owns
func (r *BandRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		if err := r.deleteChildren(ctx, "band_id = ?", id); err != nil {
			return err
		}

		result, err := r.db.exec(ctx, "bands", "DELETE FROM bands WHERE id = ?", id)
		if err != nil {
			return errors.DatabaseError("Failed to delete band", err)
		}
		return checkAffected(result, "Band")
	})
}

// DeleteByOwner deletes all of an owner's bands and everything they own
func (r *BandRepository) DeleteByOwner(ctx context.Context, ownerID int64) error {
	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		owned := "band_id IN (SELECT id FROM bands WHERE owner_id = ?)"
		if err := r.deleteChildren(ctx, owned, ownerID); err != nil {
			return err
		}

		if _, err := r.db.exec(ctx, "bands", "DELETE FROM bands WHERE owner_id = ?", ownerID); err != nil {
			return errors.DatabaseError("Failed to delete bands", err)
		}
		return nil
	})
}

// deleteChildren removes every row owned by the bands matching where.
func (r *BandRepository) deleteChildren(ctx context.Context, where string, arg any) error {
	statements := []struct {
		table string
		query string
	}{
		{"setlist_items", "DELETE FROM setlist_items WHERE setlist_id IN (SELECT id FROM setlists WHERE " + where + ")"},
		{"setlists", "DELETE FROM setlists WHERE " + where},
		{"templates", "DELETE FROM templates WHERE " + where},
		{"members", "DELETE FROM members WHERE " + where},
		{"songs", "DELETE FROM songs WHERE " + where},
	}

	for _, st := range statements {
		if _, err := r.db.exec(ctx, st.table, st.query, arg); err != nil {
			return errors.DatabaseError("Failed to delete "+st.table, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBand(row rowScanner) (*band.Band, error) {
	var b band.Band
	var createdAt, updatedAt int64
	if err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.OwnerID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	b.CreatedAt = unix(createdAt)
	b.UpdatedAt = unix(updatedAt)
	return &b, nil
}
