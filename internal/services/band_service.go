package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/patch"
	"github.com/setlistr/setlistr/internal/pkg/validator"
)

// maxSlugAttempts bounds the -2, -3, ... suffix search
const maxSlugAttempts = 100

// BandService implements band.Service
type BandService struct {
	repo   band.Repository
	authz  *Authorizer
	logger *logger.Logger
}

// NewBandService creates a new band service
func NewBandService(repo band.Repository, authz *Authorizer, log *logger.Logger) band.Service {
	return &BandService{
		repo:   repo,
		authz:  authz,
		logger: log,
	}
}

// List returns the owner's bands. Members and anonymous callers get an
// empty list.
func (s *BandService) List(ctx context.Context, actor auth.Actor) ([]*band.Band, error) {
	ownerID, ok := auth.OwnerID(actor)
	if !ok {
		return []*band.Band{}, nil
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns a readable band or nil
func (s *BandService) Get(ctx context.Context, actor auth.Actor, id string) (*band.Band, error) {
	b, err := s.authz.Authorize(ctx, actor, id, Read)
	if err != nil {
		return nil, quiet(err)
	}
	return b, nil
}

// GetBySlug returns a readable band or nil
func (s *BandService) GetBySlug(ctx context.Context, actor auth.Actor, slug string) (*band.Band, error) {
	b, err := s.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, quiet(err)
	}
	return s.Get(ctx, actor, b.ID)
}

// Create creates a band owned by the actor
func (s *BandService) Create(ctx context.Context, actor auth.Actor, name, slug string) (string, error) {
	ownerID, err := requireOwner(actor)
	if err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", required("name")
	}

	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug != "" {
		if !validSlug(slug) {
			return "", invalidSlug()
		}
	} else {
		slug, err = s.freeSlug(ctx, band.Slugify(name))
		if err != nil {
			return "", err
		}
	}

	b := &band.Band{Name: name, Slug: slug, OwnerID: ownerID}
	if err := s.repo.Create(ctx, b); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create band")
		return "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": ownerID,
		"band_id": b.ID,
		"slug":    b.Slug,
	}).Info("Band created")

	return b.ID, nil
}

// freeSlug returns base, or base with the first free numeric suffix.
func (s *BandService) freeSlug(ctx context.Context, base string) (string, error) {
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := slugCandidate(base, n)
		taken, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errors.Conflict("Could not find a free slug")
}

// slugCandidate is base for n == 1 and base-n otherwise, shortened to fit.
func slugCandidate(base string, n int) string {
	if n == 1 {
		return base
	}
	suffix := fmt.Sprintf("-%d", n)
	if len(base)+len(suffix) > band.MaxSlugLength {
		base = strings.TrimRight(base[:band.MaxSlugLength-len(suffix)], "-")
	}
	return base + suffix
}

// Update applies a name/slug patch
func (s *BandService) Update(ctx context.Context, actor auth.Actor, id string, fields patch.Fields) error {
	if err := fields.Validate(band.UpdateSchema); err != nil {
		return err
	}

	b, err := s.authz.Authorize(ctx, actor, id, Write)
	if err != nil {
		return err
	}
	if fields.Empty() {
		return nil
	}

	if name, ok := fields.String("name"); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return required("name")
		}
		b.Name = name
	}
	if slug, ok := fields.String("slug"); ok {
		slug = strings.ToLower(strings.TrimSpace(slug))
		if !validSlug(slug) {
			return invalidSlug()
		}
		b.Slug = slug
	}

	if err := s.repo.Update(ctx, b); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update band")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"band_id": b.ID,
		"fields":  fields.Keys(),
	}).Info("Band updated")

	return nil
}

// Delete removes a band and everything it owns
func (s *BandService) Delete(ctx context.Context, actor auth.Actor, id string) error {
	if _, err := s.authz.Authorize(ctx, actor, id, Write); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.ErrorWithErr(err, "Failed to delete band")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"band_id": id,
	}).Info("Band deleted")

	return nil
}

func validSlug(slug string) bool {
	return len(slug) <= band.MaxSlugLength && validator.IsSlug(slug)
}

func invalidSlug() error {
	return errors.ValidationError("Validation failed", []patch.FieldError{{
		Field:   "slug",
		Message: "slug must be lowercase letters, digits and single dashes",
	}})
}
