package services

import (
	"context"
	"testing"

	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/domain/member"
	"github.com/setlistr/setlistr/internal/domain/setlist"
	"github.com/setlistr/setlistr/internal/domain/song"
	"github.com/setlistr/setlistr/internal/domain/template"
	"github.com/setlistr/setlistr/internal/pkg/errors"
)

// vanishingBands deletes a band as soon as it has been read, the way a
// concurrent delete landing between the ownership check and the insert would.
type vanishingBands struct {
	band.Repository
}

func (v *vanishingBands) GetByID(ctx context.Context, id string) (*band.Band, error) {
	b, err := v.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := v.Repository.Delete(ctx, id); err != nil {
		return nil, err
	}
	return b, nil
}

func TestCreate_BandDeletedAfterCheck(t *testing.T) {
	tests := []struct {
		name   string
		table  string
		create func(f *fixture, authz *Authorizer) error
	}{
		{
			name:  "song",
			table: "songs",
			create: func(f *fixture, authz *Authorizer) error {
				svc := NewSongService(f.songRepo, authz, f.db, f.log)
				_, err := svc.Create(context.Background(), f.owner, f.band.ID, &song.Song{Title: "Late", VocalIntensity: 2, EnergyLevel: 2})
				return err
			},
		},
		{
			name:  "setlist",
			table: "setlists",
			create: func(f *fixture, authz *Authorizer) error {
				svc := NewSetlistService(f.setRepo, f.songRepo, authz, f.db, f.subSvc, f.log)
				_, err := svc.Create(context.Background(), f.owner, f.band.ID, &setlist.Setlist{
					Name:       "Late",
					SetsConfig: []setlist.SetConfig{{SetIndex: 0, SongsPerSet: 2}},
				})
				return err
			},
		},
		{
			name:  "template",
			table: "templates",
			create: func(f *fixture, authz *Authorizer) error {
				svc := NewTemplateService(f.tmplRepo, f.setRepo, f.songRepo, authz, f.db, f.log)
				_, err := svc.Create(context.Background(), f.owner, f.band.ID, "Late", []template.SetConfig{{SetIndex: 0, SongsPerSet: 2}})
				return err
			},
		},
		{
			name:  "member",
			table: "members",
			create: func(f *fixture, authz *Authorizer) error {
				svc := NewMemberService(f.memRepo, f.bands, authz, f.db, MemberServiceConfig{Mailer: f.mailer}, f.log)
				_, err := svc.Create(context.Background(), f.owner, f.band.ID, &member.Member{Name: "Late", Role: member.RoleMember})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			authz := NewAuthorizer(&vanishingBands{Repository: f.bands})

			err := tt.create(f, authz)
			if !errors.IsNotFound(err) {
				t.Fatalf("Create() error = %v, want band not found", err)
			}

			var n int
			q := "SELECT COUNT(*) FROM " + tt.table + " WHERE band_id = ?"
			if err := f.db.QueryRowContext(context.Background(), q, f.band.ID).Scan(&n); err != nil {
				t.Fatalf("count %s: %v", tt.table, err)
			}
			if n != 0 {
				t.Errorf("%d %s rows written for a deleted band", n, tt.table)
			}
		})
	}
}
