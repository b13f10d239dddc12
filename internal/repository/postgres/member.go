package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/setlistr/setlistr/internal/domain/member"
	"github.com/setlistr/setlistr/internal/pkg/errors"
)

const memberColumns = `id, band_id, name, email, role, access_token, created_at, updated_at`

// MemberRepository implements member.Repository
type MemberRepository struct {
	db *DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *DB) member.Repository {
	return &MemberRepository{db: db}
}

// Create creates a new member
func (r *MemberRepository) Create(ctx context.Context, m *member.Member) error {
	now := time.Now().UTC().Truncate(time.Second)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := r.db.exec(ctx, "members", `
		INSERT INTO members (id, band_id, name, email, role, access_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.BandID, m.Name, m.Email, m.Role, m.AccessToken, now.Unix(), now.Unix())
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.NotFound("Band")
		}
		return errors.DatabaseError("Failed to create member", err)
	}

	return nil
}

// GetByID retrieves a member by ID
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*member.Member, error) {
	return r.getOne(ctx, "SELECT "+memberColumns+" FROM members WHERE id = ?", id)
}

// GetByToken retrieves the member holding token
func (r *MemberRepository) GetByToken(ctx context.Context, token string) (*member.Member, error) {
	return r.getOne(ctx, "SELECT "+memberColumns+" FROM members WHERE access_token = ?", token)
}

func (r *MemberRepository) getOne(ctx context.Context, query string, arg any) (*member.Member, error) {
	m, err := scanMember(r.db.queryRow(ctx, "members", query, arg))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Member")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get member", err)
	}
	return m, nil
}

// ListByBand retrieves a band's members
func (r *MemberRepository) ListByBand(ctx context.Context, bandID string) ([]*member.Member, error) {
	rows, err := r.db.query(ctx, "members",
		"SELECT "+memberColumns+" FROM members WHERE band_id = ? ORDER BY LOWER(name), id", bandID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list members", err)
	}
	defer rows.Close()

	members := []*member.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan member", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list members", err)
	}

	return members, nil
}

// Update updates a member
func (r *MemberRepository) Update(ctx context.Context, m *member.Member) error {
	m.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	result, err := r.db.exec(ctx, "members",
		"UPDATE members SET name = ?, email = ?, role = ?, updated_at = ? WHERE id = ?",
		m.Name, m.Email, m.Role, m.UpdatedAt.Unix(), m.ID)
	if err != nil {
		return errors.DatabaseError("Failed to update member", err)
	}

	return checkAffected(result, "Member")
}

// UpdateToken replaces a member's access token
func (r *MemberRepository) UpdateToken(ctx context.Context, id, token string) error {
	result, err := r.db.exec(ctx, "members",
		"UPDATE members SET access_token = ?, updated_at = ? WHERE id = ?",
		token, time.Now().Unix(), id)
	if err != nil {
		return errors.DatabaseError("Failed to update member token", err)
	}

	return checkAffected(result, "Member")
}

// Delete deletes a member
func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.exec(ctx, "members", "DELETE FROM members WHERE id = ?", id)
	if err != nil {
		return errors.DatabaseError("Failed to delete member", err)
	}

	return checkAffected(result, "Member")
}

func scanMember(row rowScanner) (*member.Member, error) {
	var m member.Member
	var createdAt, updatedAt int64
	err := row.Scan(&m.ID, &m.BandID, &m.Name, &m.Email, &m.Role, &m.AccessToken, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = unix(createdAt)
	m.UpdatedAt = unix(updatedAt)
	return &m, nil
}
