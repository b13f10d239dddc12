package services

import (
	"context"
	"reflect"
	"testing"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/domain/setlist"
	"github.com/setlistr/setlistr/internal/domain/template"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

func TestTemplateService_NonOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.tmplSvc.Create(ctx, f.owner, f.band.ID, "Standard", []template.SetConfig{{SetIndex: 0, SongsPerSet: 3}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name  string
		actor auth.Actor
		code  string
	}{
		{name: "other user", actor: f.stranger, code: errors.ErrCodeForbidden},
		{name: "member of another band", actor: auth.Member{MemberID: "m1", BandID: "elsewhere"}, code: errors.ErrCodeForbidden},
		{name: "anonymous", actor: nil, code: errors.ErrCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := f.tmplSvc.List(ctx, tt.actor, f.band.ID)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if list == nil || len(list) != 0 {
				t.Errorf("List() = %v, want empty list", list)
			}

			_, err = f.tmplSvc.Create(ctx, tt.actor, f.band.ID, "Mine", []template.SetConfig{{SetIndex: 0, SongsPerSet: 2}})
			wantCode(t, err, tt.code)

			wantCode(t, f.tmplSvc.Update(ctx, tt.actor, id, patch.Fields{"name": "Stolen"}), tt.code)
			wantCode(t, f.tmplSvc.Delete(ctx, tt.actor, id), tt.code)
		})
	}

	got, err := f.tmplSvc.Get(ctx, f.owner, id)
	if err != nil || got == nil || got.Name != "Standard" {
		t.Errorf("template after denied writes = %+v, %v", got, err)
	}
}

func TestTemplateService_MemberReadsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.tmplSvc.Create(ctx, f.owner, f.band.ID, "Standard", []template.SetConfig{{SetIndex: 0, SongsPerSet: 3}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	m, _ := f.addMember(t, "Drummer", "")
	actor := auth.Member{MemberID: m.ID, BandID: f.band.ID}

	list, err := f.tmplSvc.List(ctx, actor, f.band.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("List() = %v, %v; want one template", list, err)
	}

	err = f.tmplSvc.Update(ctx, actor, id, patch.Fields{"name": "Hijacked"})
	wantCode(t, err, errors.ErrCodeForbidden)
}

func TestTemplateService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	songID := f.addSong(t, "Opener")

	tests := []struct {
		name     string
		tmplName string
		sets     []template.SetConfig
		wantName string
		wantErr  string
	}{
		{
			name:     "name is trimmed",
			tmplName: "  My Template  ",
			sets:     []template.SetConfig{{SetIndex: 0, SongsPerSet: 4}},
			wantName: "My Template",
		},
		{
			name:     "pinned song of the band",
			tmplName: "Pinned",
			sets: []template.SetConfig{{SetIndex: 0, SongsPerSet: 4, PinnedSlots: []template.PinnedSlot{
				{Position: 0, SongID: strPtr(songID)},
			}}},
			wantName: "Pinned",
		},
		{
			name:     "blank name",
			tmplName: "   ",
			sets:     []template.SetConfig{{SetIndex: 0, SongsPerSet: 4}},
			wantErr:  errors.ErrCodeValidation,
		},
		{
			name:     "no sets",
			tmplName: "Empty",
			wantErr:  errors.ErrCodeValidation,
		},
		{
			name:     "pinned position outside set",
			tmplName: "Overflow",
			sets: []template.SetConfig{{SetIndex: 0, SongsPerSet: 2, PinnedSlots: []template.PinnedSlot{
				{Position: 2},
			}}},
			wantErr: errors.ErrCodeValidation,
		},
		{
			name:     "unknown song",
			tmplName: "Foreign",
			sets: []template.SetConfig{{SetIndex: 0, SongsPerSet: 2, PinnedSlots: []template.PinnedSlot{
				{Position: 0, SongID: strPtr("not-a-song")},
			}}},
			wantErr: errors.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := f.tmplSvc.Create(ctx, f.owner, f.band.ID, tt.tmplName, tt.sets)
			if tt.wantErr != "" {
				wantCode(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			got, err := f.tmplSvc.Get(ctx, f.owner, id)
			if err != nil || got == nil {
				t.Fatalf("Get() = %v, %v", got, err)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.SetsConfig[0].PinnedSlots == nil {
				t.Error("PinnedSlots should never be nil")
			}
		})
	}
}

func TestTemplateService_UpdateEmptyPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.tmplSvc.Create(ctx, f.owner, f.band.ID, "Standard", []template.SetConfig{{SetIndex: 0, SongsPerSet: 3}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	before, _ := f.tmplSvc.Get(ctx, f.owner, id)

	if err := f.tmplSvc.Update(ctx, f.owner, id, patch.Fields{}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if f.tmplRepo.updates != 0 {
		t.Errorf("empty patch wrote %d times, want 0", f.tmplRepo.updates)
	}

	after, _ := f.tmplSvc.Get(ctx, f.owner, id)
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("UpdatedAt changed from %v to %v", before.UpdatedAt, after.UpdatedAt)
	}
}

func TestTemplateService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.tmplSvc.Create(ctx, f.owner, f.band.ID, "Standard", []template.SetConfig{{SetIndex: 0, SongsPerSet: 3}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name    string
		fields  patch.Fields
		wantErr string
	}{
		{name: "rename", fields: patch.Fields{"name": "  Festival  "}},
		{name: "reshape", fields: patch.Fields{"setsConfig": []template.SetConfig{{SetIndex: 0, SongsPerSet: 5}, {SetIndex: 1, SongsPerSet: 2}}}},
		{name: "unknown field", fields: patch.Fields{"color": "red"}, wantErr: errors.ErrCodeValidation},
		{name: "wrong kind", fields: patch.Fields{"name": 12}, wantErr: errors.ErrCodeValidation},
		{name: "blank name", fields: patch.Fields{"name": " "}, wantErr: errors.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.tmplSvc.Update(ctx, f.owner, id, tt.fields)
			if tt.wantErr != "" {
				wantCode(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
		})
	}

	got, _ := f.tmplSvc.Get(ctx, f.owner, id)
	if got.Name != "Festival" {
		t.Errorf("Name = %q, want Festival", got.Name)
	}
	if len(got.SetsConfig) != 2 || got.SetsConfig[0].SongsPerSet != 5 {
		t.Errorf("SetsConfig = %+v", got.SetsConfig)
	}
}

func TestTemplateService_DeleteTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.tmplSvc.Create(ctx, f.owner, f.band.ID, "Standard", []template.SetConfig{{SetIndex: 0, SongsPerSet: 3}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := f.tmplSvc.Delete(ctx, f.owner, id); err != nil {
		t.Fatalf("first Delete() error = %v", err)
	}
	wantCode(t, f.tmplSvc.Delete(ctx, f.owner, id), errors.ErrCodeNotFound)

	got, err := f.tmplSvc.Get(ctx, f.owner, id)
	if err != nil || got != nil {
		t.Errorf("Get() after delete = %v, %v; want nil, nil", got, err)
	}
}

// seedPinnedSetlist builds the two-set setlist with s1 and s3 pinned and s2
// placed but not pinned.
func seedPinnedSetlist(t *testing.T, f *fixture) (string, [3]string) {
	t.Helper()
	ctx := context.Background()

	ids := [3]string{f.addSong(t, "s1"), f.addSong(t, "s2"), f.addSong(t, "s3")}
	slID := f.addSetlist(t, setlist.SetConfig{SetIndex: 0, SongsPerSet: 4}, setlist.SetConfig{SetIndex: 1, SongsPerSet: 3})

	err := f.setSvc.ReplaceItems(ctx, f.owner, slID, []setlist.Item{
		{SetIndex: 0, Position: 1, SongID: strPtr(ids[0]), IsPinned: true},
		{SetIndex: 0, Position: 2, SongID: strPtr(ids[1]), IsPinned: false},
		{SetIndex: 1, Position: 0, SongID: strPtr(ids[2]), IsPinned: true},
	})
	if err != nil {
		t.Fatalf("ReplaceItems() error = %v", err)
	}
	return slID, ids
}

func TestTemplateService_CreateFromSetlist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slID, ids := seedPinnedSetlist(t, f)

	id, err := f.tmplSvc.CreateFromSetlist(ctx, f.owner, slID, " From Friday ")
	if err != nil {
		t.Fatalf("CreateFromSetlist() error = %v", err)
	}

	got, err := f.tmplSvc.Get(ctx, f.owner, id)
	if err != nil || got == nil {
		t.Fatalf("Get() = %v, %v", got, err)
	}

	want := []template.SetConfig{
		{SetIndex: 0, SongsPerSet: 4, PinnedSlots: []template.PinnedSlot{{Position: 1, SongID: strPtr(ids[0])}}},
		{SetIndex: 1, SongsPerSet: 3, PinnedSlots: []template.PinnedSlot{{Position: 0, SongID: strPtr(ids[2])}}},
	}
	if !reflect.DeepEqual(got.SetsConfig, want) {
		t.Errorf("SetsConfig = %+v, want %+v", got.SetsConfig, want)
	}
	if got.Name != "From Friday" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestTemplateService_CreateFromSetlist_Denied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slID, _ := seedPinnedSetlist(t, f)

	_, err := f.tmplSvc.CreateFromSetlist(ctx, f.stranger, slID, "Stolen")
	wantCode(t, err, errors.ErrCodeForbidden)

	_, err = f.tmplSvc.CreateFromSetlist(ctx, f.owner, "missing", "Ghost")
	wantCode(t, err, errors.ErrCodeNotFound)

	_, err = f.tmplSvc.CreateFromSetlist(ctx, f.owner, slID, "  ")
	wantCode(t, err, errors.ErrCodeValidation)
}

func TestTemplateService_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slID, ids := seedPinnedSetlist(t, f)

	tmplID, err := f.tmplSvc.CreateFromSetlist(ctx, f.owner, slID, "Round trip")
	if err != nil {
		t.Fatalf("CreateFromSetlist() error = %v", err)
	}

	newID, err := f.tmplSvc.Instantiate(ctx, f.owner, tmplID, template.InstantiateInput{Venue: "Joe's", Date: "2024-05-01"})
	if err != nil {
		t.Fatalf("Instantiate() error = %v", err)
	}

	original, _ := f.setSvc.Get(ctx, f.owner, slID)
	copied, err := f.setSvc.Get(ctx, f.owner, newID)
	if err != nil || copied == nil {
		t.Fatalf("Get() = %v, %v", copied, err)
	}

	if copied.Name != "Round trip" {
		t.Errorf("Name = %q, want template name", copied.Name)
	}
	if !reflect.DeepEqual(copied.SetsConfig, original.SetsConfig) {
		t.Errorf("SetsConfig = %+v, want %+v", copied.SetsConfig, original.SetsConfig)
	}
	if len(copied.Items) != 7 {
		t.Fatalf("got %d items, want 7", len(copied.Items))
	}

	for _, it := range copied.Items {
		var want *string
		switch {
		case it.SetIndex == 0 && it.Position == 1:
			want = &ids[0]
		case it.SetIndex == 1 && it.Position == 0:
			want = &ids[2]
		}

		if want == nil {
			if it.SongID != nil || it.IsPinned {
				t.Errorf("slot %d/%d = %+v, want empty", it.SetIndex, it.Position, it)
			}
			continue
		}
		if it.SongID == nil || *it.SongID != *want || !it.IsPinned {
			t.Errorf("slot %d/%d = %+v, want pinned %s", it.SetIndex, it.Position, it, *want)
		}
	}
}

func TestTemplateService_InstantiateDropsDeletedSongs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	keep := f.addSong(t, "Keeper")
	gone := f.addSong(t, "Goner")

	tmplID, err := f.tmplSvc.Create(ctx, f.owner, f.band.ID, "Standard", []template.SetConfig{{
		SetIndex:    0,
		SongsPerSet: 3,
		PinnedSlots: []template.PinnedSlot{{Position: 0, SongID: strPtr(keep)}, {Position: 2, SongID: strPtr(gone)}},
	}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := f.songSvc.Delete(ctx, f.owner, gone); err != nil {
		t.Fatalf("Delete song error = %v", err)
	}

	slID, err := f.tmplSvc.Instantiate(ctx, f.owner, tmplID, template.InstantiateInput{Name: "Saturday"})
	if err != nil {
		t.Fatalf("Instantiate() error = %v", err)
	}

	sl, _ := f.setSvc.Get(ctx, f.owner, slID)
	if sl.Name != "Saturday" {
		t.Errorf("Name = %q", sl.Name)
	}
	if it := sl.Items[0]; it.SongID == nil || *it.SongID != keep || !it.IsPinned {
		t.Errorf("slot 0 = %+v, want pinned keeper", it)
	}
	if it := sl.Items[2]; it.SongID != nil || it.IsPinned {
		t.Errorf("slot 2 = %+v, want empty", it)
	}
}

func TestTemplateService_SongDeleteUnpins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	keep := f.addSong(t, "Keeper")
	gone := f.addSong(t, "Goner")

	tmplID, err := f.tmplSvc.Create(ctx, f.owner, f.band.ID, "Standard", []template.SetConfig{{
		SetIndex:    0,
		SongsPerSet: 3,
		PinnedSlots: []template.PinnedSlot{{Position: 0, SongID: strPtr(keep)}, {Position: 2, SongID: strPtr(gone)}},
	}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := f.songSvc.Delete(ctx, f.owner, gone); err != nil {
		t.Fatalf("Delete song error = %v", err)
	}

	got, _ := f.tmplSvc.Get(ctx, f.owner, tmplID)
	want := []template.PinnedSlot{{Position: 0, SongID: strPtr(keep)}}
	if !reflect.DeepEqual(got.SetsConfig[0].PinnedSlots, want) {
		t.Errorf("PinnedSlots = %+v, want only the keeper", got.SetsConfig[0].PinnedSlots)
	}

	// the stored shape is accepted back unchanged
	if err := f.tmplSvc.Update(ctx, f.owner, tmplID, patch.Fields{"setsConfig": got.SetsConfig}); err != nil {
		t.Errorf("Update() with stored setsConfig error = %v", err)
	}
}
