package template

import (
	"reflect"
	"testing"

	"github.com/setlistr/setlistr/internal/domain/setlist"
)

func id(s string) *string { return &s }

func TestFromSetlist(t *testing.T) {
	sets := []setlist.SetConfig{
		{SetIndex: 1, SongsPerSet: 3},
		{SetIndex: 0, SongsPerSet: 4},
	}
	items := []setlist.Item{
		{SetIndex: 0, Position: 1, SongID: id("s1"), IsPinned: true},
		{SetIndex: 0, Position: 2, SongID: id("s2"), IsPinned: false},
		{SetIndex: 1, Position: 0, SongID: id("s3"), IsPinned: true},
	}

	got := FromSetlist(sets, items)
	want := []SetConfig{
		{SetIndex: 0, SongsPerSet: 4, PinnedSlots: []PinnedSlot{{Position: 1, SongID: id("s1")}}},
		{SetIndex: 1, SongsPerSet: 3, PinnedSlots: []PinnedSlot{{Position: 0, SongID: id("s3")}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromSetlist() = %+v, want %+v", got, want)
	}
}

func TestFromSetlist_NoPinnedItems(t *testing.T) {
	got := FromSetlist([]setlist.SetConfig{{SetIndex: 0, SongsPerSet: 2}}, []setlist.Item{
		{SetIndex: 0, Position: 0, SongID: id("s1")},
	})
	if len(got) != 1 || got[0].PinnedSlots == nil || len(got[0].PinnedSlots) != 0 {
		t.Errorf("FromSetlist() = %+v, want one set with an empty pinned list", got)
	}
}

func TestExpand(t *testing.T) {
	cfgs := []SetConfig{
		{SetIndex: 0, SongsPerSet: 3, PinnedSlots: []PinnedSlot{{Position: 2, SongID: id("s1")}}},
	}

	sets, items := Expand(cfgs, nil)
	if !reflect.DeepEqual(sets, []setlist.SetConfig{{SetIndex: 0, SongsPerSet: 3}}) {
		t.Errorf("Expand() sets = %+v", sets)
	}
	want := []setlist.Item{
		{SetIndex: 0, Position: 0},
		{SetIndex: 0, Position: 1},
		{SetIndex: 0, Position: 2, SongID: id("s1"), IsPinned: true},
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("Expand() items = %+v, want %+v", items, want)
	}
}

func TestExpand_DropsRejectedSongs(t *testing.T) {
	cfgs := []SetConfig{
		{SetIndex: 0, SongsPerSet: 2, PinnedSlots: []PinnedSlot{
			{Position: 0, SongID: id("gone")},
			{Position: 1, SongID: id("kept")},
		}},
	}

	_, items := Expand(cfgs, func(songID string) bool { return songID == "kept" })
	if items[0].SongID != nil || items[0].IsPinned {
		t.Errorf("slot 0 = %+v, want empty and unpinned", items[0])
	}
	if items[1].SongID == nil || *items[1].SongID != "kept" || !items[1].IsPinned {
		t.Errorf("slot 1 = %+v, want pinned kept", items[1])
	}
}

func TestRoundTrip(t *testing.T) {
	sets := []setlist.SetConfig{
		{SetIndex: 0, SongsPerSet: 4},
		{SetIndex: 1, SongsPerSet: 3},
	}
	items := []setlist.Item{
		{SetIndex: 0, Position: 1, SongID: id("s1"), IsPinned: true},
		{SetIndex: 0, Position: 2, SongID: id("s2"), IsPinned: false},
		{SetIndex: 1, Position: 0, SongID: id("s3"), IsPinned: true},
	}

	gotSets, gotItems := Expand(FromSetlist(sets, items), nil)
	if !reflect.DeepEqual(gotSets, sets) {
		t.Errorf("sets = %+v, want %+v", gotSets, sets)
	}
	if len(gotItems) != 7 {
		t.Fatalf("got %d items, want 7", len(gotItems))
	}

	for _, it := range gotItems {
		var want *setlist.Item
		for i := range items {
			if items[i].IsPinned && items[i].SetIndex == it.SetIndex && items[i].Position == it.Position {
				want = &items[i]
			}
		}
		if want == nil {
			if it.SongID != nil || it.IsPinned {
				t.Errorf("slot %d/%d = %+v, want empty", it.SetIndex, it.Position, it)
			}
			continue
		}
		if !it.IsPinned || it.SongID == nil || *it.SongID != *want.SongID {
			t.Errorf("slot %d/%d = %+v, want pinned %s", it.SetIndex, it.Position, it, *want.SongID)
		}
	}
}

func TestValidateSetsConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfgs    []SetConfig
		wantErr bool
	}{
		{
			name: "valid",
			cfgs: []SetConfig{{SetIndex: 0, SongsPerSet: 3, PinnedSlots: []PinnedSlot{{Position: 0}, {Position: 2, SongID: id("s")}}}},
		},
		{
			name:    "duplicate pinned position",
			cfgs:    []SetConfig{{SetIndex: 0, SongsPerSet: 3, PinnedSlots: []PinnedSlot{{Position: 1}, {Position: 1}}}},
			wantErr: true,
		},
		{
			name:    "pinned position outside the set",
			cfgs:    []SetConfig{{SetIndex: 0, SongsPerSet: 3, PinnedSlots: []PinnedSlot{{Position: 3}}}},
			wantErr: true,
		},
		{
			name:    "repeated set index",
			cfgs:    []SetConfig{{SetIndex: 0, SongsPerSet: 3}, {SetIndex: 0, SongsPerSet: 2}},
			wantErr: true,
		},
		{
			name:    "no sets",
			cfgs:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateSetsConfig(tt.cfgs)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("ValidateSetsConfig() = %+v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestWithoutSong(t *testing.T) {
	in := []SetConfig{
		{SetIndex: 0, SongsPerSet: 3, PinnedSlots: []PinnedSlot{{Position: 0, SongID: id("a")}, {Position: 1, SongID: id("b")}}},
		{SetIndex: 1, SongsPerSet: 2, PinnedSlots: []PinnedSlot{{Position: 1}}},
	}

	got, changed := WithoutSong(in, "b")
	if !changed {
		t.Fatal("WithoutSong() reported no change")
	}
	want := []SetConfig{
		{SetIndex: 0, SongsPerSet: 3, PinnedSlots: []PinnedSlot{{Position: 0, SongID: id("a")}}},
		{SetIndex: 1, SongsPerSet: 2, PinnedSlots: []PinnedSlot{{Position: 1}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WithoutSong() = %+v, want %+v", got, want)
	}
	if len(in[0].PinnedSlots) != 2 {
		t.Error("input was modified")
	}

	if _, changed := WithoutSong(in, "zzz"); changed {
		t.Error("WithoutSong() changed sets for an unpinned song")
	}
}
