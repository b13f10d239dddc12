package services

import (
	"context"
	"fmt"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/domain/setlist"
	"github.com/setlistr/setlistr/internal/domain/song"
	"github.com/setlistr/setlistr/internal/domain/template"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/metrics"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// TemplateService implements template.Service
type TemplateService struct {
	repo     template.Repository
	setlists setlist.Repository
	songs    song.Repository
	authz    *Authorizer
	tx       Transactor
	logger   *logger.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(repo template.Repository, setlists setlist.Repository, songs song.Repository, authz *Authorizer, tx Transactor, log *logger.Logger) template.Service {
	return &TemplateService{
		repo:     repo,
		setlists: setlists,
		songs:    songs,
		authz:    authz,
		tx:       tx,
		logger:   log,
	}
}

// List returns the band's templates by name, or an empty list
func (s *TemplateService) List(ctx context.Context, actor auth.Actor, bandID string) ([]*template.Template, error) {
	if _, err := s.authz.Authorize(ctx, actor, bandID, Read); err != nil {
		return []*template.Template{}, quiet(err)
	}
	return s.repo.ListByBand(ctx, bandID)
}

// Get returns a readable template or nil
func (s *TemplateService) Get(ctx context.Context, actor auth.Actor, id string) (*template.Template, error) {
	t, err := s.load(ctx, actor, id, Read)
	if err != nil {
		return nil, quiet(err)
	}
	return t, nil
}

func (s *TemplateService) load(ctx context.Context, actor auth.Actor, id string, access Access) (*template.Template, error) {
	t, _, err := fetch(ctx, s.authz, actor, access, id, s.repo.GetByID, func(t *template.Template) string { return t.BandID })
	return t, err
}

// Create inserts a template
func (s *TemplateService) Create(ctx context.Context, actor auth.Actor, bandID, name string, sets []template.SetConfig) (string, error) {
	name = template.NormalizeName(name)
	problems := append(template.ValidateName(name), template.ValidateSetsConfig(sets)...)

	t := &template.Template{BandID: bandID, Name: name, SetsConfig: normalizeSets(sets)}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.authz.Authorize(ctx, actor, bandID, Write); err != nil {
			return err
		}
		if err := validationError(problems); err != nil {
			return err
		}
		if err := s.checkSongs(ctx, bandID, sets); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, t); err != nil {
			s.logger.ErrorWithErr(err, "Failed to create template")
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"band_id":     bandID,
		"template_id": t.ID,
	}).Info("Template created")

	return t.ID, nil
}

// Update applies a name/setsConfig patch. An empty patch writes nothing.
func (s *TemplateService) Update(ctx context.Context, actor auth.Actor, id string, fields patch.Fields) error {
	if err := fields.Validate(template.UpdateSchema); err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.load(ctx, actor, id, Write)
		if err != nil {
			return err
		}
		if fields.Empty() {
			return nil
		}

		if name, ok := fields.String("name"); ok {
			t.Name = template.NormalizeName(name)
			if err := validationError(template.ValidateName(t.Name)); err != nil {
				return err
			}
		}
		if sets, ok := patch.Get[[]template.SetConfig](fields, "setsConfig"); ok {
			if err := validationError(template.ValidateSetsConfig(sets)); err != nil {
				return err
			}
			if err := s.checkSongs(ctx, t.BandID, sets); err != nil {
				return err
			}
			t.SetsConfig = normalizeSets(sets)
		}

		if err := s.repo.Update(ctx, t); err != nil {
			s.logger.ErrorWithErr(err, "Failed to update template")
			return err
		}

		s.logger.WithFields(map[string]interface{}{
			"template_id": id,
			"fields":      fields.Keys(),
		}).Info("Template updated")
		return nil
	})
}

// Delete removes a template. Deleting it again reports NotFound.
func (s *TemplateService) Delete(ctx context.Context, actor auth.Actor, id string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.load(ctx, actor, id, Write); err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, id); err != nil {
			s.logger.ErrorWithErr(err, "Failed to delete template")
			return err
		}

		s.logger.WithFields(map[string]interface{}{
			"template_id": id,
		}).Info("Template deleted")
		return nil
	})
}

// CreateFromSetlist derives a template from the pinned slots of a setlist.
// Sets keep their index and size; pinned songs keep their positions.
func (s *TemplateService) CreateFromSetlist(ctx context.Context, actor auth.Actor, setlistID, name string) (string, error) {
	name = template.NormalizeName(name)

	var t *template.Template
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sl, _, err := fetch(ctx, s.authz, actor, Write, setlistID, s.setlists.GetByID,
			func(sl *setlist.Setlist) string { return sl.BandID })
		if err != nil {
			return err
		}
		if err := validationError(template.ValidateName(name)); err != nil {
			return err
		}

		items, err := s.setlists.Items(ctx, setlistID)
		if err != nil {
			return err
		}

		t = &template.Template{
			BandID:     sl.BandID,
			Name:       name,
			SetsConfig: template.FromSetlist(sl.SetsConfig, items),
		}
		return s.repo.Create(ctx, t)
	})
	if err != nil {
		return "", err
	}

	metrics.RecordTemplateTransform("to_template")
	s.logger.WithFields(map[string]interface{}{
		"band_id":     t.BandID,
		"setlist_id":  setlistID,
		"template_id": t.ID,
	}).Info("Template created from setlist")

	return t.ID, nil
}

// Instantiate creates a setlist from a template: every set gets songsPerSet
// slots, pinned positions carry their song, the rest stay empty. A pinned
// song that no longer exists leaves its slot empty and unpinned. An empty
// name falls back to the template's.
func (s *TemplateService) Instantiate(ctx context.Context, actor auth.Actor, templateID string, in template.InstantiateInput) (string, error) {
	var sl *setlist.Setlist
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.load(ctx, actor, templateID, Write)
		if err != nil {
			return err
		}

		found, err := s.songs.ExistingIDs(ctx, t.BandID, template.SongIDs(t.SetsConfig))
		if err != nil {
			return err
		}
		sets, items := template.Expand(t.SetsConfig, func(id string) bool { return found[id] })

		sl = &setlist.Setlist{
			BandID:     t.BandID,
			Name:       in.Name,
			Venue:      in.Venue,
			Date:       in.Date,
			SetsConfig: sets,
			Items:      items,
		}
		sl.Normalize()
		if sl.Name == "" {
			sl.Name = t.Name
		}
		if err := validationError(sl.Validate()); err != nil {
			return err
		}

		return s.setlists.Create(ctx, sl)
	})
	if err != nil {
		return "", err
	}

	metrics.RecordTemplateTransform("to_setlist")
	s.logger.WithFields(map[string]interface{}{
		"band_id":     sl.BandID,
		"template_id": templateID,
		"setlist_id":  sl.ID,
	}).Info("Setlist created from template")

	return sl.ID, nil
}

// checkSongs rejects pinned songs that are not songs of bandID.
func (s *TemplateService) checkSongs(ctx context.Context, bandID string, sets []template.SetConfig) error {
	found, err := s.songs.ExistingIDs(ctx, bandID, template.SongIDs(sets))
	if err != nil {
		return err
	}

	var problems []template.FieldError
	for i, c := range sets {
		for j, p := range c.PinnedSlots {
			if p.SongID != nil && !found[*p.SongID] {
				problems = append(problems, template.FieldError{
					Field:   fmt.Sprintf("setsConfig[%d].pinnedSlots[%d].songId", i, j),
					Message: fmt.Sprintf("song %s does not belong to this band", *p.SongID),
				})
			}
		}
	}
	return validationError(problems)
}

// normalizeSets keeps the caller's order and replaces nil pinned lists so
// they serialize as [].
func normalizeSets(sets []template.SetConfig) []template.SetConfig {
	out := make([]template.SetConfig, len(sets))
	for i, c := range sets {
		out[i] = c
		if out[i].PinnedSlots == nil {
			out[i].PinnedSlots = []template.PinnedSlot{}
		}
	}
	return out
}
