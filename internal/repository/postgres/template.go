package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/setlistr/setlistr/internal/domain/template"
	"github.com/setlistr/setlistr/internal/pkg/errors"
)

const templateColumns = `id, band_id, name, sets_config, created_at, updated_at`

// TemplateRepository implements template.Repository
type TemplateRepository struct {
	db *DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *DB) template.Repository {
	return &TemplateRepository{db: db}
}

// Create creates a new template
func (r *TemplateRepository) Create(ctx context.Context, t *template.Template) error {
	now := time.Now().UTC().Truncate(time.Second)
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = now
	t.UpdatedAt = now

	sets, err := json.Marshal(t.SetsConfig)
	if err != nil {
		return errors.Internal("Failed to encode sets", err)
	}

	_, err = r.db.exec(ctx, "templates", `
		INSERT INTO templates (id, band_id, name, sets_config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.BandID, t.Name, string(sets), now.Unix(), now.Unix())
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.NotFound("Band")
		}
		return errors.DatabaseError("Failed to create template", err)
	}

	return nil
}

// GetByID retrieves a template by ID
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*template.Template, error) {
	t, err := scanTemplate(r.db.queryRow(ctx, "templates", "SELECT "+templateColumns+" FROM templates WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Template")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get template", err)
	}
	return t, nil
}

// ListByBand retrieves a band's templates
func (r *TemplateRepository) ListByBand(ctx context.Context, bandID string) ([]*template.Template, error) {
	rows, err := r.db.query(ctx, "templates",
		"SELECT "+templateColumns+" FROM templates WHERE band_id = ? ORDER BY LOWER(name), id", bandID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list templates", err)
	}
	defer rows.Close()

	templates := []*template.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan template", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list templates", err)
	}

	return templates, nil
}

// Update updates a template
func (r *TemplateRepository) Update(ctx context.Context, t *template.Template) error {
	t.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	sets, err := json.Marshal(t.SetsConfig)
	if err != nil {
		return errors.Internal("Failed to encode sets", err)
	}

	result, err := r.db.exec(ctx, "templates",
		"UPDATE templates SET name = ?, sets_config = ?, updated_at = ? WHERE id = ?",
		t.Name, string(sets), t.UpdatedAt.Unix(), t.ID)
	if err != nil {
		return errors.DatabaseError("Failed to update template", err)
	}

	return checkAffected(result, "Template")
}

// Delete deletes a template
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.exec(ctx, "templates", "DELETE FROM templates WHERE id = ?", id)
	if err != nil {
		return errors.DatabaseError("Failed to delete template", err)
	}

	return checkAffected(result, "Template")
}

func scanTemplate(row rowScanner) (*template.Template, error) {
	var t template.Template
	var sets string
	var createdAt, updatedAt int64
	if err := row.Scan(&t.ID, &t.BandID, &t.Name, &sets, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sets), &t.SetsConfig); err != nil {
		return nil, err
	}
	t.CreatedAt = unix(createdAt)
	t.UpdatedAt = unix(updatedAt)
	return &t, nil
}
