package services

import (
	"context"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/domain/song"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// SongService implements song.Service
type SongService struct {
	repo   song.Repository
	authz  *Authorizer
	tx     Transactor
	logger *logger.Logger
}

// NewSongService creates a new song service
func NewSongService(repo song.Repository, authz *Authorizer, tx Transactor, log *logger.Logger) song.Service {
	return &SongService{
		repo:   repo,
		authz:  authz,
		tx:     tx,
		logger: log,
	}
}

// List returns the band's songs by title, or an empty list
func (s *SongService) List(ctx context.Context, actor auth.Actor, bandID string) ([]*song.Song, error) {
	if _, err := s.authz.Authorize(ctx, actor, bandID, Read); err != nil {
		return []*song.Song{}, quiet(err)
	}
	return s.repo.ListByBand(ctx, bandID)
}

// Get returns a readable song or nil
func (s *SongService) Get(ctx context.Context, actor auth.Actor, id string) (*song.Song, error) {
	so, err := s.load(ctx, actor, id, Read)
	if err != nil {
		return nil, quiet(err)
	}
	return so, nil
}

func (s *SongService) load(ctx context.Context, actor auth.Actor, id string, access Access) (*song.Song, error) {
	so, _, err := fetch(ctx, s.authz, actor, access, id, s.repo.GetByID, func(so *song.Song) string { return so.BandID })
	return so, err
}

// Create adds a song to a band
func (s *SongService) Create(ctx context.Context, actor auth.Actor, bandID string, so *song.Song) (string, error) {
	so.ID = ""
	so.BandID = bandID
	so.Normalize()

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.authz.Authorize(ctx, actor, bandID, Write); err != nil {
			return err
		}
		if err := validationError(so.Validate()); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, so); err != nil {
			s.logger.ErrorWithErr(err, "Failed to create song")
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"band_id": bandID,
		"song_id": so.ID,
	}).Info("Song created")

	return so.ID, nil
}

// Update applies a patch to a song
func (s *SongService) Update(ctx context.Context, actor auth.Actor, id string, fields patch.Fields) error {
	if err := fields.Validate(song.UpdateSchema); err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		so, err := s.load(ctx, actor, id, Write)
		if err != nil {
			return err
		}
		if fields.Empty() {
			return nil
		}

		so.Apply(fields)
		if err := validationError(so.Validate()); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, so); err != nil {
			s.logger.ErrorWithErr(err, "Failed to update song")
			return err
		}

		s.logger.WithFields(map[string]interface{}{
			"song_id": id,
			"fields":  fields.Keys(),
		}).Info("Song updated")
		return nil
	})
}

// Delete removes a song and empties the slots that held it
func (s *SongService) Delete(ctx context.Context, actor auth.Actor, id string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		so, err := s.load(ctx, actor, id, Write)
		if err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, id); err != nil {
			s.logger.ErrorWithErr(err, "Failed to delete song")
			return err
		}

		s.logger.WithFields(map[string]interface{}{
			"song_id": id,
			"band_id": so.BandID,
		}).Info("Song deleted")
		return nil
	})
}
