package timeline

import (
	"math"
	"sort"
)

// ActiveClipInfo answers "what footage plays at this time on this lane".
type ActiveClipInfo struct {
	Lane            int    `json:"lane"`
	Clip            *Clip  `json:"clip"`
	ClipTimeMs      int64  `json:"clipTimeMs"`
	SourceTimeMs    int64  `json:"sourceTimeMs"`
	IsInGap         bool   `json:"isInGap"`
	NextClipStartMs *int64 `json:"nextClipStartMs"`
}

func gapInfo(lane int, next *int64) ActiveClipInfo {
	return ActiveClipInfo{Lane: lane, IsInGap: true, NextClipStartMs: next}
}

// Resolve finds the clip covering gameTimeMs on the given lane. It never
// fails: unknown lanes, empty lanes, negative times and times past the end
// all resolve to a gap.
func Resolve(lanes []*Lane, laneNumber int, gameTimeMs int64) ActiveClipInfo {
	for _, l := range lanes {
		if l.Number == laneNumber {
			return l.resolve(gameTimeMs)
		}
	}
	return gapInfo(laneNumber, nil)
}

// Resolve is Resolve over this timeline's lanes.
func (t *GameTimeline) Resolve(laneNumber int, gameTimeMs int64) ActiveClipInfo {
	return Resolve(t.lanes, laneNumber, gameTimeMs)
}

// ResolveAll resolves every lane at the same instant, ordered by lane number.
func (t *GameTimeline) ResolveAll(gameTimeMs int64) []ActiveClipInfo {
	out := make([]ActiveClipInfo, 0, len(t.lanes))
	for _, l := range t.lanes {
		out = append(out, l.resolve(gameTimeMs))
	}
	return out
}

func (l *Lane) resolve(gameTimeMs int64) ActiveClipInfo {
	clips := l.ordered()
	if len(clips) == 0 {
		return gapInfo(l.Number, nil)
	}
	laneTime := laneTimeAt(gameTimeMs, l.SyncOffsetMs)

	// First clip starting strictly after laneTime; the only candidate for
	// coverage is the one just before it.
	i := sort.Search(len(clips), func(i int) bool {
		return clips[i].LanePositionMs > laneTime
	})
	if i > 0 {
		if c := clips[i-1]; c.Contains(laneTime) {
			clipTime := laneTime - c.LanePositionMs
			return ActiveClipInfo{
				Lane:         l.Number,
				Clip:         c.Clone(),
				ClipTimeMs:   clipTime,
				SourceTimeMs: c.StartOffsetMs + clipTime,
			}
		}
	}
	if i < len(clips) {
		next := clips[i].LanePositionMs + l.SyncOffsetMs
		return gapInfo(l.Number, &next)
	}
	return gapInfo(l.Number, nil)
}

// laneTimeAt converts game time to lane time, saturating instead of wrapping.
func laneTimeAt(gameTimeMs, syncOffsetMs int64) int64 {
	t := gameTimeMs - syncOffsetMs
	switch {
	case syncOffsetMs < 0 && t < gameTimeMs:
		return math.MaxInt64
	case syncOffsetMs > 0 && t > gameTimeMs:
		return math.MinInt64
	}
	return t
}
