package setlist

import (
	"reflect"
	"testing"
)

func ptr(s string) *string { return &s }

func TestReconcile(t *testing.T) {
	items := []Item{
		{SetIndex: 0, Position: 0, SongID: ptr("a"), IsPinned: true},
		{SetIndex: 0, Position: 3, SongID: ptr("b")},
		{SetIndex: 2, Position: 0, SongID: ptr("c")},
	}

	got := Reconcile([]SetConfig{{SetIndex: 0, SongsPerSet: 2}}, items)
	want := []Item{
		{SetIndex: 0, Position: 0, SongID: ptr("a"), IsPinned: true},
		{SetIndex: 0, Position: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reconcile() = %+v, want %+v", got, want)
	}
}

func TestSkeleton(t *testing.T) {
	got := Skeleton([]SetConfig{{SetIndex: 1, SongsPerSet: 1}, {SetIndex: 0, SongsPerSet: 2}})
	want := []Item{
		{SetIndex: 0, Position: 0},
		{SetIndex: 0, Position: 1},
		{SetIndex: 1, Position: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Skeleton() = %+v, want %+v", got, want)
	}
}

func TestValidateItems(t *testing.T) {
	cfgs := []SetConfig{{SetIndex: 0, SongsPerSet: 2}}

	tests := []struct {
		name    string
		items   []Item
		wantErr bool
	}{
		{name: "valid", items: []Item{{SetIndex: 0, Position: 1, SongID: ptr("a")}}},
		{name: "unknown set", items: []Item{{SetIndex: 1, Position: 0}}, wantErr: true},
		{name: "position out of range", items: []Item{{SetIndex: 0, Position: 2}}, wantErr: true},
		{name: "repeated slot", items: []Item{{SetIndex: 0, Position: 0}, {SetIndex: 0, Position: 0}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateItems(cfgs, tt.items)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("ValidateItems() = %+v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestSetlist_Validate(t *testing.T) {
	s := &Setlist{Name: "  ", Date: "tomorrow", SetsConfig: []SetConfig{{SetIndex: 0, SongsPerSet: 0}}}
	s.Normalize()
	errs := s.Validate()

	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, f := range []string{"name", "date", "setsConfig[0].songsPerSet"} {
		if !fields[f] {
			t.Errorf("Validate() did not flag %s: %+v", f, errs)
		}
	}
}
