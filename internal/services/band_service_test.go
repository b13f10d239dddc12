package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/domain/setlist"
	"github.com/setlistr/setlistr/internal/domain/template"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

func TestBandService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		bandName string
		slug     string
		wantSlug string
		wantErr  string
	}{
		{name: "slug from name", bandName: "Night Owls", wantSlug: "night-owls"},
		{name: "second collision", bandName: "Night  Owls!", wantSlug: "night-owls-2"},
		{name: "third collision", bandName: "night owls", wantSlug: "night-owls-3"},
		{name: "explicit slug", bandName: "Whatever", slug: "  Custom-Slug ", wantSlug: "custom-slug"},
		{name: "symbols only", bandName: "!!!", wantSlug: "band"},
		{name: "taken explicit slug", bandName: "Copy", slug: "night-owls", wantErr: errors.ErrCodeConflict},
		{name: "invalid explicit slug", bandName: "Bad", slug: "no spaces allowed", wantErr: errors.ErrCodeValidation},
		{name: "long explicit slug", bandName: "Long", slug: strings.Repeat("a", 61), wantErr: errors.ErrCodeValidation},
		{name: "blank name", bandName: "   ", wantErr: errors.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := f.bandSvc.Create(ctx, f.owner, tt.bandName, tt.slug)
			if tt.wantErr != "" {
				wantCode(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			b, err := f.bandSvc.Get(ctx, f.owner, id)
			if err != nil || b == nil {
				t.Fatalf("Get() = %v, %v", b, err)
			}
			if b.Slug != tt.wantSlug {
				t.Errorf("Slug = %q, want %q", b.Slug, tt.wantSlug)
			}
			if b.OwnerID != f.owner.UserID {
				t.Errorf("OwnerID = %d", b.OwnerID)
			}
		})
	}
}

// slugsTakenExcept reports every slug as taken except free.
type slugsTakenExcept struct {
	band.Repository
	free   string
	checks int
}

func (r *slugsTakenExcept) SlugExists(ctx context.Context, slug string) (bool, error) {
	r.checks++
	return slug != r.free, nil
}

func TestBandService_FreeSlugChecksEveryCandidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		free     string
		want     string
		wantErr  string
		wantSeen int
	}{
		{name: "base free", free: "opener", want: "opener", wantSeen: 1},
		{name: "first suffix", free: "opener-2", want: "opener-2", wantSeen: 2},
		{name: "last suffix", free: fmt.Sprintf("opener-%d", maxSlugAttempts), want: fmt.Sprintf("opener-%d", maxSlugAttempts), wantSeen: maxSlugAttempts},
		{name: "none free", free: "", wantErr: errors.ErrCodeConflict, wantSeen: maxSlugAttempts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &slugsTakenExcept{free: tt.free}
			svc := &BandService{repo: repo, logger: logger.Nop()}

			got, err := svc.freeSlug(ctx, "opener")
			if tt.wantErr != "" {
				wantCode(t, err, tt.wantErr)
			} else if err != nil || got != tt.want {
				t.Errorf("freeSlug() = %q, %v; want %q", got, err, tt.want)
			}
			if repo.checks != tt.wantSeen {
				t.Errorf("checked %d slugs, want %d", repo.checks, tt.wantSeen)
			}
		})
	}
}

func TestSlugCandidate_FitsMaxLength(t *testing.T) {
	base := strings.Repeat("a", band.MaxSlugLength)
	got := slugCandidate(base, 12)
	if len(got) > band.MaxSlugLength || !strings.HasSuffix(got, "-12") {
		t.Errorf("slugCandidate() = %q", got)
	}
}

func TestBandService_CreateRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bandSvc.Create(ctx, nil, "Anon", "")
	wantCode(t, err, errors.ErrCodeUnauthorized)

	_, err = f.bandSvc.Create(ctx, auth.Member{MemberID: "m", BandID: f.band.ID}, "Member band", "")
	wantCode(t, err, errors.ErrCodeForbidden)
}

func TestBandService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.bandSvc.Create(ctx, f.owner, "Acoustic Duo", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name  string
		actor auth.Actor
		want  []string
	}{
		{name: "owner sees own bands by name", actor: f.owner, want: []string{"Acoustic Duo", "The Testers"}},
		{name: "stranger sees nothing", actor: f.stranger, want: []string{}},
		{name: "member sees nothing", actor: auth.Member{MemberID: "m", BandID: f.band.ID}, want: []string{}},
		{name: "anonymous sees nothing", actor: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.bandSvc.List(ctx, tt.actor)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if got == nil {
				t.Fatal("List() returned nil, want a list")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("List() returned %d bands, want %d", len(got), len(tt.want))
			}
			for i, b := range got {
				if b.Name != tt.want[i] {
					t.Errorf("List()[%d] = %q, want %q", i, b.Name, tt.want[i])
				}
			}
		})
	}
}

func TestBandService_GetBySlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.bandSvc.GetBySlug(ctx, f.owner, "the-testers")
	if err != nil || b == nil || b.ID != f.band.ID {
		t.Fatalf("GetBySlug() = %v, %v", b, err)
	}

	b, err = f.bandSvc.GetBySlug(ctx, f.stranger, "the-testers")
	if err != nil || b != nil {
		t.Errorf("GetBySlug() as stranger = %v, %v; want nil", b, err)
	}

	b, err = f.bandSvc.GetBySlug(ctx, f.owner, "nope")
	if err != nil || b != nil {
		t.Errorf("GetBySlug() missing = %v, %v; want nil", b, err)
	}
}

func TestBandService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, err := f.bandSvc.Create(ctx, f.owner, "Other", "other")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name    string
		actor   auth.Actor
		fields  patch.Fields
		wantErr string
	}{
		{name: "empty patch", actor: f.owner, fields: patch.Fields{}},
		{name: "rename", actor: f.owner, fields: patch.Fields{"name": "  Renamed "}},
		{name: "new slug", actor: f.owner, fields: patch.Fields{"slug": "renamed"}},
		{name: "slug in use", actor: f.owner, fields: patch.Fields{"slug": "other"}, wantErr: errors.ErrCodeConflict},
		{name: "blank name", actor: f.owner, fields: patch.Fields{"name": ""}, wantErr: errors.ErrCodeValidation},
		{name: "owner is not patchable", actor: f.owner, fields: patch.Fields{"ownerId": 9}, wantErr: errors.ErrCodeValidation},
		{name: "stranger", actor: f.stranger, fields: patch.Fields{"name": "Mine"}, wantErr: errors.ErrCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.bandSvc.Update(ctx, tt.actor, f.band.ID, tt.fields)
			if tt.wantErr != "" {
				wantCode(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
		})
	}

	b, _ := f.bandSvc.Get(ctx, f.owner, f.band.ID)
	if b.Name != "Renamed" || b.Slug != "renamed" {
		t.Errorf("band = %+v", b)
	}
	if o, _ := f.bandSvc.Get(ctx, f.owner, other); o.Slug != "other" {
		t.Errorf("other band slug changed to %q", o.Slug)
	}
}

func TestBandService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	songID := f.addSong(t, "Anthem")
	slID := f.addSetlist(t, setlist.SetConfig{SetIndex: 0, SongsPerSet: 2})
	tmplID, err := f.tmplSvc.Create(ctx, f.owner, f.band.ID, "Standard", []template.SetConfig{{SetIndex: 0, SongsPerSet: 2}})
	if err != nil {
		t.Fatalf("Create template error = %v", err)
	}
	_, token := f.addMember(t, "Singer", "")

	wantCode(t, f.bandSvc.Delete(ctx, f.stranger, f.band.ID), errors.ErrCodeForbidden)

	if err := f.bandSvc.Delete(ctx, f.owner, f.band.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := f.songRepo.GetByID(ctx, songID); !errors.IsNotFound(err) {
		t.Errorf("song survived: %v", err)
	}
	if _, err := f.setRepo.GetByID(ctx, slID); !errors.IsNotFound(err) {
		t.Errorf("setlist survived: %v", err)
	}
	if _, err := f.tmplRepo.GetByID(ctx, tmplID); !errors.IsNotFound(err) {
		t.Errorf("template survived: %v", err)
	}
	if s, err := f.memberSvc.ResolveSession(ctx, token); err != nil || s != nil {
		t.Errorf("ResolveSession() = %v, %v; want nil", s, err)
	}

	wantCode(t, f.bandSvc.Delete(ctx, f.owner, f.band.ID), errors.ErrCodeNotFound)
}
