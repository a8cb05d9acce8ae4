package timeline

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	DefaultGridMs            = 1000
	DefaultMinClipDurationMs = 100
)

// Op names a mutation kind.
type Op string

const (
	OpPlace  Op = "place"
	OpMove   Op = "move"
	OpTrim   Op = "trim"
	OpRemove Op = "remove"

	OpAddLane    Op = "add_lane"
	OpLabel      Op = "label"
	OpSyncOffset Op = "sync_offset"
	OpEnable     Op = "enable"
)

// Result describes a committed mutation so callers can update their own view
// of the timeline without the engine reaching back into them.
type Result struct {
	Op              Op    `json:"op"`
	Clip            *Clip `json:"clip"`
	Lane            int   `json:"lane"`
	PreviousLane    int   `json:"previousLane,omitempty"`
	LaneCreated     bool  `json:"laneCreated,omitempty"`
	Changed         bool  `json:"changed"`
	TotalDurationMs int64 `json:"totalDurationMs"`
}

// Engine applies validated clip mutations to a timeline. Every operation
// either commits fully or leaves the timeline untouched.
type Engine struct {
	GridMs            int64
	MinClipDurationMs int64
	NewID             func() string
}

func NewEngine() *Engine {
	return &Engine{
		GridMs:            DefaultGridMs,
		MinClipDurationMs: DefaultMinClipDurationMs,
		NewID:             uuid.NewString,
	}
}

// Snap quantizes a position to the nearest grid multiple, never below zero.
func (e *Engine) Snap(positionMs int64) int64 {
	if positionMs < 0 {
		return 0
	}
	if e.GridMs <= 0 {
		return positionMs
	}
	return (positionMs + e.GridMs/2) / e.GridMs * e.GridMs
}

func (e *Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

// PlaceClip puts a new clip for video on lane at positionMs (snapped). A nil
// trim uses the whole source recording.
func (e *Engine) PlaceClip(tl *GameTimeline, lane int, video VideoAsset, positionMs int64, trim *Trim) (Result, error) {
	window := Trim{}
	if trim != nil {
		window = *trim
	}
	clip, err := NewClip(e.newID(), video.ID, e.Snap(positionMs), window, video.DurationMs)
	if err != nil {
		return Result{}, err
	}
	if err := e.checkMinDuration(clip); err != nil {
		return Result{}, err
	}

	target, exists := tl.Lane(lane)
	if !exists {
		if err := tl.canCreateLane(lane); err != nil {
			return Result{}, err
		}
		target = newLane(lane, "")
	}
	if err := target.checkPlacement(clip, ""); err != nil {
		return Result{}, err
	}

	if !exists {
		target, _, _ = tl.EnsureLane(lane)
	}
	target.insert(clip)
	tl.recompute()

	return Result{
		Op:              OpPlace,
		Clip:            clip.Clone(),
		Lane:            lane,
		LaneCreated:     !exists,
		Changed:         true,
		TotalDurationMs: tl.TotalDurationMs(),
	}, nil
}

// MoveClip relocates a clip to toLane at newPositionMs (snapped). Only the
// destination lane is validated; the clip itself never collides with its old slot.
func (e *Engine) MoveClip(tl *GameTimeline, clipID string, toLane int, newPositionMs int64) (Result, error) {
	from, clip := tl.FindClip(clipID)
	if clip == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
	}

	candidate := clip.Clone()
	candidate.LanePositionMs = e.Snap(newPositionMs)

	dest, exists := tl.Lane(toLane)
	if !exists {
		if err := tl.canCreateLane(toLane); err != nil {
			return Result{}, err
		}
		dest = newLane(toLane, "")
	}
	if err := dest.checkPlacement(candidate, clipID); err != nil {
		return Result{}, err
	}

	changed := from.Number != toLane || clip.LanePositionMs != candidate.LanePositionMs
	if from.Number == toLane {
		clip.LanePositionMs = candidate.LanePositionMs
		from.invalidate()
	} else {
		if !exists {
			dest, _, _ = tl.EnsureLane(toLane)
		}
		from.remove(clipID)
		clip.LanePositionMs = candidate.LanePositionMs
		dest.insert(clip)
	}
	tl.recompute()

	return Result{
		Op:              OpMove,
		Clip:            clip.Clone(),
		Lane:            toLane,
		PreviousLane:    from.Number,
		LaneCreated:     !exists,
		Changed:         changed,
		TotalDurationMs: tl.TotalDurationMs(),
	}, nil
}

// TrimClip changes a clip's source window in place. Its lane position is kept,
// so the new interval is re-checked against its neighbours.
func (e *Engine) TrimClip(tl *GameTimeline, clipID string, startOffsetMs int64, endOffsetMs *int64) (Result, error) {
	lane, clip := tl.FindClip(clipID)
	if clip == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
	}

	candidate := clip.Clone()
	candidate.StartOffsetMs = startOffsetMs
	candidate.EndOffsetMs = copyOffset(endOffsetMs)
	// Re-applying the current offsets is a no-op even for clips that would
	// fail today's minimum length.
	if sameTrim(clip.Trim(), candidate.Trim()) {
		return Result{
			Op:              OpTrim,
			Clip:            clip.Clone(),
			Lane:            lane.Number,
			TotalDurationMs: tl.TotalDurationMs(),
		}, nil
	}
	if err := candidate.validate(); err != nil {
		return Result{}, err
	}
	if err := e.checkMinDuration(candidate); err != nil {
		return Result{}, err
	}
	if err := lane.checkPlacement(candidate, clipID); err != nil {
		return Result{}, err
	}

	changed := !sameTrim(clip.Trim(), candidate.Trim())
	clip.StartOffsetMs = candidate.StartOffsetMs
	clip.EndOffsetMs = candidate.EndOffsetMs
	lane.invalidate()
	tl.recompute()

	return Result{
		Op:              OpTrim,
		Clip:            clip.Clone(),
		Lane:            lane.Number,
		Changed:         changed,
		TotalDurationMs: tl.TotalDurationMs(),
	}, nil
}

// RemoveClip deletes a clip. The lane slot is kept even when it becomes empty.
func (e *Engine) RemoveClip(tl *GameTimeline, clipID string) (Result, error) {
	lane, clip := tl.FindClip(clipID)
	if clip == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
	}
	lane.remove(clipID)
	tl.recompute()

	return Result{
		Op:              OpRemove,
		Clip:            clip.Clone(),
		Lane:            lane.Number,
		Changed:         true,
		TotalDurationMs: tl.TotalDurationMs(),
	}, nil
}

func (e *Engine) checkMinDuration(c *Clip) error {
	if d := c.DurationMs(); d <= e.MinClipDurationMs {
		return fmt.Errorf("%w: duration %dms is not above the %dms minimum", ErrInvalidTrim, d, e.MinClipDurationMs)
	}
	return nil
}

func sameTrim(a, b Trim) bool {
	if a.StartOffsetMs != b.StartOffsetMs {
		return false
	}
	if a.EndOffsetMs == nil || b.EndOffsetMs == nil {
		return a.EndOffsetMs == nil && b.EndOffsetMs == nil
	}
	return *a.EndOffsetMs == *b.EndOffsetMs
}
