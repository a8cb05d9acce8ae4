package timeline

import (
	"fmt"
	"sort"
)

// MaxLanes bounds the number of camera lanes on one timeline.
const MaxLanes = 5

// LabelSuggestions are offered to editors when naming a lane.
var LabelSuggestions = []string{
	"Sideline",
	"End Zone",
	"Press Box",
	"Baseline",
	"Wide",
	"Tight",
	"Broadcast",
	"Bench",
}

// DefaultLabel is the placeholder name for a lane that was never labelled.
func DefaultLabel(lane int) string {
	return fmt.Sprintf("Camera %d", lane)
}

// Lane is one camera's track. Clips on a lane never overlap.
type Lane struct {
	Number       int
	Label        string
	SyncOffsetMs int64

	clips  []*Clip
	sorted bool
}

func newLane(number int, label string) *Lane {
	if label == "" {
		label = DefaultLabel(number)
	}
	return &Lane{Number: number, Label: label, sorted: true}
}

// ordered returns the lane's clips by ascending LanePositionMs. The order is
// cached and only recomputed after a mutation invalidates it.
func (l *Lane) ordered() []*Clip {
	if !l.sorted {
		sortClips(l.clips)
		l.sorted = true
	}
	return l.clips
}

// Clips returns copies of the lane's clips in playback order.
func (l *Lane) Clips() []*Clip {
	ordered := l.ordered()
	out := make([]*Clip, len(ordered))
	for i, c := range ordered {
		out[i] = c.Clone()
	}
	return out
}

func (l *Lane) Len() int {
	return len(l.clips)
}

func (l *Lane) clip(id string) (int, *Clip) {
	for i, c := range l.clips {
		if c.ID == id {
			return i, c
		}
	}
	return -1, nil
}

// EndMs is the end of the last clip on the lane, 0 when empty.
func (l *Lane) EndMs() int64 {
	var end int64
	for _, c := range l.clips {
		if e := c.EndMs(); e > end {
			end = e
		}
	}
	return end
}

// checkPlacement verifies that the lane's full clip set, with candidate added
// and the clip named by exclude left out, has no overlapping pair.
func (l *Lane) checkPlacement(candidate *Clip, exclude string) error {
	set := make([]*Clip, 0, len(l.clips)+1)
	for _, c := range l.clips {
		if c.ID == exclude || c.ID == candidate.ID {
			continue
		}
		set = append(set, c)
	}
	set = append(set, candidate)
	sortClips(set)

	for i := 1; i < len(set); i++ {
		prev, cur := set[i-1], set[i]
		if prev.Overlaps(cur) {
			a, b := prev.ID, cur.ID
			if b == candidate.ID {
				a, b = b, a
			}
			return &OverlapError{Lane: l.Number, ClipID: a, Conflict: b}
		}
	}
	return nil
}

func (l *Lane) insert(c *Clip) {
	l.clips = append(l.clips, c)
	l.sorted = false
}

func (l *Lane) remove(id string) *Clip {
	i, c := l.clip(id)
	if c == nil {
		return nil
	}
	l.clips = append(l.clips[:i], l.clips[i+1:]...)
	return c
}

func (l *Lane) invalidate() {
	l.sorted = false
}

func (l *Lane) clone() *Lane {
	cp := &Lane{
		Number:       l.Number,
		Label:        l.Label,
		SyncOffsetMs: l.SyncOffsetMs,
		clips:        make([]*Clip, len(l.clips)),
		sorted:       l.sorted,
	}
	for i, c := range l.clips {
		cp.clips[i] = c.Clone()
	}
	return cp
}

func sortClips(clips []*Clip) {
	sort.SliceStable(clips, func(i, j int) bool {
		if clips[i].LanePositionMs == clips[j].LanePositionMs {
			return clips[i].ID < clips[j].ID
		}
		return clips[i].LanePositionMs < clips[j].LanePositionMs
	})
}
