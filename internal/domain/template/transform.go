package template

import (
	"sort"

	"github.com/setlistr/setlistr/internal/domain/setlist"
)

// FromSetlist derives a template's sets from a setlist. Sets keep their
// index and size and are ordered by index. Only pinned items are carried
// over, at their original positions.
func FromSetlist(cfgs []setlist.SetConfig, items []setlist.Item) []SetConfig {
	out := make([]SetConfig, 0, len(cfgs))
	for _, c := range setlist.SortConfigs(cfgs) {
		pinned := []PinnedSlot{}
		for _, it := range items {
			if it.SetIndex != c.SetIndex || !it.IsPinned {
				continue
			}
			pinned = append(pinned, PinnedSlot{Position: it.Position, SongID: copyID(it.SongID)})
		}
		sort.SliceStable(pinned, func(i, j int) bool { return pinned[i].Position < pinned[j].Position })
		out = append(out, SetConfig{
			SetIndex:    c.SetIndex,
			SongsPerSet: c.SongsPerSet,
			PinnedSlots: pinned,
		})
	}
	return out
}

// Expand builds a setlist skeleton from a template: songsPerSet slots per
// set, pinned positions filled and flagged, the rest empty.
//
// keep is consulted for every pinned song; a song it rejects leaves its slot
// empty and unpinned. A nil keep accepts every song.
func Expand(cfgs []SetConfig, keep func(songID string) bool) ([]setlist.SetConfig, []setlist.Item) {
	sorted := make([]SetConfig, len(cfgs))
	copy(sorted, cfgs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SetIndex < sorted[j].SetIndex })

	sets := make([]setlist.SetConfig, 0, len(sorted))
	var items []setlist.Item
	for _, c := range sorted {
		sets = append(sets, setlist.SetConfig{SetIndex: c.SetIndex, SongsPerSet: c.SongsPerSet})

		pinned := make(map[int]PinnedSlot, len(c.PinnedSlots))
		for _, p := range c.PinnedSlots {
			pinned[p.Position] = p
		}

		for pos := 0; pos < c.SongsPerSet; pos++ {
			item := setlist.Item{SetIndex: c.SetIndex, Position: pos}
			if p, ok := pinned[pos]; ok {
				if p.SongID == nil || keep == nil || keep(*p.SongID) {
					item.SongID = copyID(p.SongID)
					item.IsPinned = true
				}
			}
			items = append(items, item)
		}
	}
	return sets, items
}

// WithoutSong drops the pinned slots holding songID. It reports whether any
// slot was dropped; the input is never modified.
func WithoutSong(cfgs []SetConfig, songID string) ([]SetConfig, bool) {
	out := make([]SetConfig, len(cfgs))
	changed := false
	for i, c := range cfgs {
		kept := make([]PinnedSlot, 0, len(c.PinnedSlots))
		for _, p := range c.PinnedSlots {
			if p.SongID != nil && *p.SongID == songID {
				changed = true
				continue
			}
			kept = append(kept, p)
		}
		c.PinnedSlots = kept
		out[i] = c
	}
	return out, changed
}

func copyID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
