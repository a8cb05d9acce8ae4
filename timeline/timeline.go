// Package timeline reconciles several independently recorded camera feeds of
// one game onto a shared, editable time axis.
//
// A GameTimeline is not safe for concurrent use; callers serialize access.
package timeline

import (
	"fmt"
	"sort"
)

// GameTimeline is the aggregate root for one recorded game.
type GameTimeline struct {
	GameID              string
	TimelineModeEnabled bool

	lanes           []*Lane
	totalDurationMs int64
}

func New(gameID string) *GameTimeline {
	return &GameTimeline{GameID: gameID, TimelineModeEnabled: true}
}

// Lanes returns the lanes ordered by lane number.
func (t *GameTimeline) Lanes() []*Lane {
	out := make([]*Lane, len(t.lanes))
	copy(out, t.lanes)
	return out
}

func (t *GameTimeline) Lane(number int) (*Lane, bool) {
	for _, l := range t.lanes {
		if l.Number == number {
			return l, true
		}
	}
	return nil, false
}

func (t *GameTimeline) TotalDurationMs() int64 {
	return t.totalDurationMs
}

// PlaybackEndMs is the game time at which the last footage on any lane ends,
// with each lane's sync offset applied.
func (t *GameTimeline) PlaybackEndMs() int64 {
	var end int64
	for _, l := range t.lanes {
		if l.Len() == 0 {
			continue
		}
		if e := l.EndMs() + l.SyncOffsetMs; e > end {
			end = e
		}
	}
	return end
}

func (t *GameTimeline) ClipCount() int {
	n := 0
	for _, l := range t.lanes {
		n += l.Len()
	}
	return n
}

// AddLane allocates the lowest unused lane number.
func (t *GameTimeline) AddLane(label string) (*Lane, error) {
	for n := 1; n <= MaxLanes; n++ {
		if _, ok := t.Lane(n); !ok {
			return t.createLane(n, label), nil
		}
	}
	return nil, fmt.Errorf("%w: timeline already has %d lanes", ErrCapacityExceeded, MaxLanes)
}

// EnsureLane returns lane n, creating it if it does not exist yet. It is the
// only path through which clip placement grows the lane registry.
func (t *GameTimeline) EnsureLane(n int) (*Lane, bool, error) {
	if l, ok := t.Lane(n); ok {
		return l, false, nil
	}
	if err := t.canCreateLane(n); err != nil {
		return nil, false, err
	}
	return t.createLane(n, ""), true, nil
}

func (t *GameTimeline) canCreateLane(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidLane, n)
	}
	if n > MaxLanes || len(t.lanes) >= MaxLanes {
		return fmt.Errorf("%w: lane %d exceeds the %d lane limit", ErrCapacityExceeded, n, MaxLanes)
	}
	return nil
}

func (t *GameTimeline) createLane(n int, label string) *Lane {
	l := newLane(n, label)
	t.lanes = append(t.lanes, l)
	sort.Slice(t.lanes, func(i, j int) bool { return t.lanes[i].Number < t.lanes[j].Number })
	return l
}

// SetLabel renames a lane. Labels need not be unique; an empty label restores the default.
func (t *GameTimeline) SetLabel(lane int, label string) error {
	l, ok := t.Lane(lane)
	if !ok {
		return fmt.Errorf("%w: %d", ErrLaneNotFound, lane)
	}
	if label == "" {
		label = DefaultLabel(lane)
	}
	l.Label = label
	return nil
}

// SetSyncOffset records a lane's offset against the shared timeline. Clip
// positions are left untouched; the offset is applied when resolving.
func (t *GameTimeline) SetSyncOffset(lane int, offsetMs int64) error {
	l, ok := t.Lane(lane)
	if !ok {
		return fmt.Errorf("%w: %d", ErrLaneNotFound, lane)
	}
	l.SyncOffsetMs = offsetMs
	return nil
}

// FindClip locates a clip by id across all lanes.
func (t *GameTimeline) FindClip(id string) (*Lane, *Clip) {
	for _, l := range t.lanes {
		if _, c := l.clip(id); c != nil {
			return l, c
		}
	}
	return nil, nil
}

// Clip returns a copy of the clip with the given id.
func (t *GameTimeline) Clip(id string) (*Clip, int, error) {
	l, c := t.FindClip(id)
	if c == nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrClipNotFound, id)
	}
	return c.Clone(), l.Number, nil
}

// LocateSource finds where a position inside a source video appears on the
// timeline. It reports the lane and the game time of that position.
func (t *GameTimeline) LocateSource(videoID string, sourceMs int64) (int, int64, bool) {
	for _, l := range t.lanes {
		for _, c := range l.ordered() {
			if c.VideoID != videoID {
				continue
			}
			if sourceMs < c.StartOffsetMs || sourceMs >= c.StartOffsetMs+c.DurationMs() {
				continue
			}
			return l.Number, c.LanePositionMs + (sourceMs - c.StartOffsetMs) + l.SyncOffsetMs, true
		}
	}
	return 0, 0, false
}

func (t *GameTimeline) recompute() {
	var total int64
	for _, l := range t.lanes {
		if end := l.EndMs(); end > total {
			total = end
		}
	}
	t.totalDurationMs = total
}

// Reset drops all lanes and clips.
func (t *GameTimeline) Reset() {
	t.lanes = nil
	t.totalDurationMs = 0
}

// Clone returns a deep copy of the timeline.
func (t *GameTimeline) Clone() *GameTimeline {
	cp := &GameTimeline{
		GameID:              t.GameID,
		TimelineModeEnabled: t.TimelineModeEnabled,
		lanes:               make([]*Lane, len(t.lanes)),
		totalDurationMs:     t.totalDurationMs,
	}
	for i, l := range t.lanes {
		cp.lanes[i] = l.clone()
	}
	return cp
}
