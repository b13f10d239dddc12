package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/domain/setlist"
	"github.com/setlistr/setlistr/internal/domain/song"
	"github.com/setlistr/setlistr/internal/domain/user"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

func TestSetlistService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		sl        setlist.Setlist
		wantSlots int
		wantErr   string
	}{
		{
			name:      "two sets",
			sl:        setlist.Setlist{Name: " Friday ", Date: "2024-05-01", SetsConfig: []setlist.SetConfig{{SetIndex: 1, SongsPerSet: 2}, {SetIndex: 0, SongsPerSet: 3}}},
			wantSlots: 5,
		},
		{
			name:    "missing name",
			sl:      setlist.Setlist{SetsConfig: []setlist.SetConfig{{SetIndex: 0, SongsPerSet: 3}}},
			wantErr: errors.ErrCodeValidation,
		},
		{
			name:    "bad date",
			sl:      setlist.Setlist{Name: "Gig", Date: "May 1st", SetsConfig: []setlist.SetConfig{{SetIndex: 0, SongsPerSet: 3}}},
			wantErr: errors.ErrCodeValidation,
		},
		{
			name:    "repeated set index",
			sl:      setlist.Setlist{Name: "Gig", SetsConfig: []setlist.SetConfig{{SetIndex: 0, SongsPerSet: 3}, {SetIndex: 0, SongsPerSet: 1}}},
			wantErr: errors.ErrCodeValidation,
		},
		{
			name:    "set too large",
			sl:      setlist.Setlist{Name: "Gig", SetsConfig: []setlist.SetConfig{{SetIndex: 0, SongsPerSet: setlist.MaxSongsPerSet + 1}}},
			wantErr: errors.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sl := tt.sl
			id, err := f.setSvc.Create(ctx, f.owner, f.band.ID, &sl)
			if tt.wantErr != "" {
				wantCode(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			got, _ := f.setSvc.Get(ctx, f.owner, id)
			if got.Name != "Friday" {
				t.Errorf("Name = %q", got.Name)
			}
			if len(got.Items) != tt.wantSlots {
				t.Errorf("got %d slots, want %d", len(got.Items), tt.wantSlots)
			}
			if got.SetsConfig[0].SetIndex != 0 {
				t.Errorf("SetsConfig not sorted: %+v", got.SetsConfig)
			}
			for _, it := range got.Items {
				if it.SongID != nil || it.IsPinned {
					t.Errorf("new slot %+v should be empty", it)
				}
			}
		})
	}
}

func TestSetlistService_NonOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addSetlist(t, setlist.SetConfig{SetIndex: 0, SongsPerSet: 2})

	list, err := f.setSvc.List(ctx, f.stranger, f.band.ID)
	if err != nil || len(list) != 0 {
		t.Errorf("List() = %v, %v; want empty", list, err)
	}
	got, err := f.setSvc.Get(ctx, f.stranger, id)
	if err != nil || got != nil {
		t.Errorf("Get() = %v, %v; want nil", got, err)
	}

	wantCode(t, f.setSvc.Delete(ctx, f.stranger, id), errors.ErrCodeForbidden)
	_, err = f.setSvc.TogglePin(ctx, f.stranger, id, 0, 0)
	wantCode(t, err, errors.ErrCodeForbidden)
	_, err = f.setSvc.Create(ctx, nil, f.band.ID, &setlist.Setlist{Name: "x", SetsConfig: []setlist.SetConfig{{SetIndex: 0, SongsPerSet: 1}}})
	wantCode(t, err, errors.ErrCodeUnauthorized)
}

func TestSetlistService_ReplaceItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	songID := f.addSong(t, "Opener")
	id := f.addSetlist(t, setlist.SetConfig{SetIndex: 0, SongsPerSet: 3})

	otherBand, err := f.bandSvc.Create(ctx, f.owner, "Side Project", "")
	if err != nil {
		t.Fatalf("Create band error = %v", err)
	}
	foreign, err := f.songSvc.Create(ctx, f.owner, otherBand, &song.Song{Title: "Elsewhere", VocalIntensity: 2, EnergyLevel: 2})
	if err != nil {
		t.Fatalf("Create foreign song error = %v", err)
	}

	tests := []struct {
		name    string
		items   []setlist.Item
		wantErr string
	}{
		{name: "valid", items: []setlist.Item{{SetIndex: 0, Position: 2, SongID: strPtr(songID), IsPinned: true}}},
		{name: "position out of range", items: []setlist.Item{{SetIndex: 0, Position: 3}}, wantErr: errors.ErrCodeValidation},
		{name: "unknown set", items: []setlist.Item{{SetIndex: 4, Position: 0}}, wantErr: errors.ErrCodeValidation},
		{name: "duplicate slot", items: []setlist.Item{{SetIndex: 0, Position: 1}, {SetIndex: 0, Position: 1}}, wantErr: errors.ErrCodeValidation},
		{name: "song of another band", items: []setlist.Item{{SetIndex: 0, Position: 0, SongID: strPtr(foreign)}}, wantErr: errors.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.setSvc.ReplaceItems(ctx, f.owner, id, tt.items)
			if tt.wantErr != "" {
				wantCode(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("ReplaceItems() error = %v", err)
			}
		})
	}

	// failed calls must not have touched the stored slots
	got, _ := f.setSvc.Get(ctx, f.owner, id)
	if len(got.Items) != 3 {
		t.Fatalf("got %d slots, want 3", len(got.Items))
	}
	if it := got.Items[2]; it.SongID == nil || *it.SongID != songID || !it.IsPinned {
		t.Errorf("slot 2 = %+v", it)
	}
	if got.Items[0].SongID != nil {
		t.Errorf("slot 0 = %+v, want empty", got.Items[0])
	}
}

func TestSetlistService_UpdateReshapes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	songID := f.addSong(t, "Closer")
	id := f.addSetlist(t, setlist.SetConfig{SetIndex: 0, SongsPerSet: 4})

	err := f.setSvc.ReplaceItems(ctx, f.owner, id, []setlist.Item{
		{SetIndex: 0, Position: 0, SongID: strPtr(songID)},
		{SetIndex: 0, Position: 3, SongID: strPtr(songID)},
	})
	if err != nil {
		t.Fatalf("ReplaceItems() error = %v", err)
	}

	err = f.setSvc.Update(ctx, f.owner, id, patch.Fields{
		"setsConfig": []setlist.SetConfig{{SetIndex: 0, SongsPerSet: 2}, {SetIndex: 1, SongsPerSet: 1}},
		"venue":      " Joe's ",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := f.setSvc.Get(ctx, f.owner, id)
	if got.Venue != "Joe's" {
		t.Errorf("Venue = %q", got.Venue)
	}
	if len(got.Items) != 3 {
		t.Fatalf("got %d slots, want 3: %+v", len(got.Items), got.Items)
	}
	if got.Items[0].SongID == nil || *got.Items[0].SongID != songID {
		t.Errorf("kept slot lost its song: %+v", got.Items[0])
	}
	if got.Items[2].SetIndex != 1 || got.Items[2].SongID != nil {
		t.Errorf("new set slot = %+v", got.Items[2])
	}

	if err := f.setSvc.Update(ctx, f.owner, id, patch.Fields{}); err != nil {
		t.Errorf("empty Update() error = %v", err)
	}
	wantCode(t, f.setSvc.Update(ctx, f.owner, id, patch.Fields{"isPinned": true}), errors.ErrCodeValidation)
}

func TestSetlistService_TogglePin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addSetlist(t, setlist.SetConfig{SetIndex: 0, SongsPerSet: 2})

	for _, want := range []bool{true, false} {
		got, err := f.setSvc.TogglePin(ctx, f.owner, id, 0, 1)
		if err != nil {
			t.Fatalf("TogglePin() error = %v", err)
		}
		if got != want {
			t.Errorf("TogglePin() = %v, want %v", got, want)
		}
	}

	_, err := f.setSvc.TogglePin(ctx, f.owner, id, 0, 5)
	wantCode(t, err, errors.ErrCodeNotFound)
}

func TestSetlistService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addSetlist(t, setlist.SetConfig{SetIndex: 0, SongsPerSet: 2})

	if err := f.setSvc.Delete(ctx, f.owner, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	wantCode(t, f.setSvc.Delete(ctx, f.owner, id), errors.ErrCodeNotFound)

	items, err := f.setRepo.Items(ctx, id)
	if err != nil || len(items) != 0 {
		t.Errorf("Items() after delete = %v, %v", items, err)
	}
}

func TestSetlistService_ExportPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	songID := f.addSong(t, "Opener")
	id := f.addSetlist(t, setlist.SetConfig{SetIndex: 0, SongsPerSet: 2})
	if err := f.setSvc.ReplaceItems(ctx, f.owner, id, []setlist.Item{{SetIndex: 0, Position: 0, SongID: strPtr(songID)}}); err != nil {
		t.Fatalf("ReplaceItems() error = %v", err)
	}

	var buf bytes.Buffer
	_, err := f.setSvc.ExportPDF(ctx, f.owner, id, &buf)
	wantCode(t, err, errors.ErrCodePaymentRequired)

	if _, err := f.subSvc.StartTrial(ctx, f.owner); err != nil {
		t.Fatalf("StartTrial() error = %v", err)
	}

	m, _ := f.addMember(t, "Bassist", "")
	actors := []auth.Actor{f.owner, auth.Member{MemberID: m.ID, BandID: f.band.ID}}
	for _, actor := range actors {
		buf.Reset()
		name, err := f.setSvc.ExportPDF(ctx, actor, id, &buf)
		if err != nil {
			t.Fatalf("ExportPDF(%v) error = %v", actor, err)
		}
		if name != "friday.pdf" {
			t.Errorf("file name = %q", name)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
			t.Errorf("output is not a PDF")
		}
	}

	// a lapsed trial locks export again
	u, _ := f.users.GetByID(ctx, f.owner.UserID)
	past := time.Now().Add(-time.Hour)
	u.TrialEndsAt = &past
	if err := f.users.Update(ctx, u); err != nil {
		t.Fatalf("Update user error = %v", err)
	}
	if u.EffectiveStatus(time.Now()) != user.StatusExpired {
		t.Fatalf("trial should read as expired")
	}
	_, err = f.setSvc.ExportPDF(ctx, f.owner, id, &buf)
	wantCode(t, err, errors.ErrCodePaymentRequired)
}
