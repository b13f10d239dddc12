package services

import (
	"context"
	"fmt"
	"io"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/domain/setlist"
	"github.com/setlistr/setlistr/internal/domain/song"
	"github.com/setlistr/setlistr/internal/export"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// AccessChecker gates paid features on the band owner's subscription.
type AccessChecker interface {
	RequireAccess(ctx context.Context, userID int64) error
}

// SetlistService implements setlist.Service
type SetlistService struct {
	repo   setlist.Repository
	songs  song.Repository
	authz  *Authorizer
	tx     Transactor
	gate   AccessChecker
	logger *logger.Logger
}

// NewSetlistService creates a new setlist service. A nil gate leaves PDF
// export ungated.
func NewSetlistService(repo setlist.Repository, songs song.Repository, authz *Authorizer, tx Transactor, gate AccessChecker, log *logger.Logger) setlist.Service {
	return &SetlistService{
		repo:   repo,
		songs:  songs,
		authz:  authz,
		tx:     tx,
		gate:   gate,
		logger: log,
	}
}

// List returns the band's setlists by name, or an empty list
func (s *SetlistService) List(ctx context.Context, actor auth.Actor, bandID string) ([]*setlist.Setlist, error) {
	if _, err := s.authz.Authorize(ctx, actor, bandID, Read); err != nil {
		return []*setlist.Setlist{}, quiet(err)
	}
	return s.repo.ListByBand(ctx, bandID)
}

// Get returns a readable setlist with its items, or nil
func (s *SetlistService) Get(ctx context.Context, actor auth.Actor, id string) (*setlist.Setlist, error) {
	sl, _, err := s.load(ctx, actor, id, Read)
	if err != nil {
		return nil, quiet(err)
	}

	items, err := s.repo.Items(ctx, id)
	if err != nil {
		return nil, err
	}
	sl.Items = items
	return sl, nil
}

func (s *SetlistService) load(ctx context.Context, actor auth.Actor, id string, access Access) (*setlist.Setlist, *band.Band, error) {
	return fetch(ctx, s.authz, actor, access, id, s.repo.GetByID, func(sl *setlist.Setlist) string { return sl.BandID })
}

// Create inserts a setlist with an empty slot for every position
func (s *SetlistService) Create(ctx context.Context, actor auth.Actor, bandID string, sl *setlist.Setlist) (string, error) {
	sl.ID = ""
	sl.BandID = bandID
	sl.Normalize()

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.authz.Authorize(ctx, actor, bandID, Write); err != nil {
			return err
		}
		if err := validationError(sl.Validate()); err != nil {
			return err
		}
		sl.SetsConfig = setlist.SortConfigs(sl.SetsConfig)
		sl.Items = setlist.Skeleton(sl.SetsConfig)
		if err := s.repo.Create(ctx, sl); err != nil {
			s.logger.ErrorWithErr(err, "Failed to create setlist")
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"band_id":    bandID,
		"setlist_id": sl.ID,
		"slots":      len(sl.Items),
	}).Info("Setlist created")

	return sl.ID, nil
}

// Update applies a patch. A new setsConfig drops slots outside the new
// shape and adds empty ones where it grew.
func (s *SetlistService) Update(ctx context.Context, actor auth.Actor, id string, fields patch.Fields) error {
	if err := fields.Validate(setlist.UpdateSchema); err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sl, _, err := s.load(ctx, actor, id, Write)
		if err != nil {
			return err
		}
		if fields.Empty() {
			return nil
		}

		sl.Apply(fields)
		if err := validationError(sl.Validate()); err != nil {
			return err
		}
		sl.SetsConfig = setlist.SortConfigs(sl.SetsConfig)

		var items []setlist.Item
		if fields.Has("setsConfig") {
			current, err := s.repo.Items(ctx, id)
			if err != nil {
				return err
			}
			items = setlist.Reconcile(sl.SetsConfig, current)
		}

		if err := s.repo.Update(ctx, sl, items); err != nil {
			s.logger.ErrorWithErr(err, "Failed to update setlist")
			return err
		}

		s.logger.WithFields(map[string]interface{}{
			"setlist_id": id,
			"fields":     fields.Keys(),
		}).Info("Setlist updated")
		return nil
	})
}

// Delete removes a setlist and its items
func (s *SetlistService) Delete(ctx context.Context, actor auth.Actor, id string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, _, err := s.load(ctx, actor, id, Write); err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, id); err != nil {
			s.logger.ErrorWithErr(err, "Failed to delete setlist")
			return err
		}

		s.logger.WithFields(map[string]interface{}{
			"setlist_id": id,
		}).Info("Setlist deleted")
		return nil
	})
}

// ReplaceItems overwrites the slots of a setlist. Slots not listed are
// written empty. Every song must belong to the setlist's band.
func (s *SetlistService) ReplaceItems(ctx context.Context, actor auth.Actor, id string, items []setlist.Item) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sl, _, err := s.load(ctx, actor, id, Write)
		if err != nil {
			return err
		}

		if err := validationError(setlist.ValidateItems(sl.SetsConfig, items)); err != nil {
			return err
		}
		if err := s.checkSongs(ctx, sl.BandID, items); err != nil {
			return err
		}

		full := setlist.Reconcile(sl.SetsConfig, items)
		if err := s.repo.ReplaceItems(ctx, id, full); err != nil {
			s.logger.ErrorWithErr(err, "Failed to replace setlist items")
			return err
		}

		s.logger.WithFields(map[string]interface{}{
			"setlist_id": id,
			"slots":      len(full),
		}).Info("Setlist items replaced")
		return nil
	})
}

func (s *SetlistService) checkSongs(ctx context.Context, bandID string, items []setlist.Item) error {
	ids := setlist.SongIDs(items)
	found, err := s.songs.ExistingIDs(ctx, bandID, ids)
	if err != nil {
		return err
	}

	var problems []setlist.FieldError
	for i, it := range items {
		if it.SongID != nil && !found[*it.SongID] {
			problems = append(problems, setlist.FieldError{
				Field:   fmt.Sprintf("items[%d].songId", i),
				Message: fmt.Sprintf("song %s does not belong to this band", *it.SongID),
			})
		}
	}
	return validationError(problems)
}

// TogglePin flips the pin flag of one slot and returns the new value
func (s *SetlistService) TogglePin(ctx context.Context, actor auth.Actor, id string, setIndex, position int) (bool, error) {
	var pinned bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, _, err := s.load(ctx, actor, id, Write); err != nil {
			return err
		}

		items, err := s.repo.Items(ctx, id)
		if err != nil {
			return err
		}

		for _, it := range items {
			if it.SetIndex == setIndex && it.Position == position {
				pinned = !it.IsPinned
				return s.repo.SetPinned(ctx, id, setIndex, position, pinned)
			}
		}
		return errors.NotFound("Setlist slot")
	})
	if err != nil {
		return false, err
	}

	s.logger.WithFields(map[string]interface{}{
		"setlist_id": id,
		"set_index":  setIndex,
		"position":   position,
		"pinned":     pinned,
	}).Info("Setlist slot pin toggled")

	return pinned, nil
}

// ExportPDF renders the setlist. The band owner needs a trial or an active
// subscription.
func (s *SetlistService) ExportPDF(ctx context.Context, actor auth.Actor, id string, w io.Writer) (string, error) {
	sl, b, err := s.load(ctx, actor, id, Read)
	if err != nil {
		return "", err
	}

	if s.gate != nil {
		if err := s.gate.RequireAccess(ctx, b.OwnerID); err != nil {
			return "", err
		}
	}

	items, err := s.repo.Items(ctx, id)
	if err != nil {
		return "", err
	}
	sl.Items = items

	songs, err := s.songs.ListByBand(ctx, sl.BandID)
	if err != nil {
		return "", err
	}
	byID := make(map[string]*song.Song, len(songs))
	for _, so := range songs {
		byID[so.ID] = so
	}

	if err := export.Render(w, export.Sheet{BandName: b.Name, Setlist: sl, Songs: byID}); err != nil {
		return "", errors.Internal("Failed to render PDF", err)
	}

	return export.FileName(sl), nil
}
