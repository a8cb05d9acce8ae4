package timeline

import (
	"fmt"
	"strings"
)

// PlaybackStatus is the coarse player state. Seeking is not a status: it can
// happen in any state and leaves the status alone.
type PlaybackStatus int

const (
	Idle PlaybackStatus = iota
	Playing
	Paused
)

func (s PlaybackStatus) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "idle"
}

// GapPolicy decides what playback does when the playhead enters a gap.
type GapPolicy int

const (
	// GapSkip jumps straight to the next clip on the active lane.
	GapSkip GapPolicy = iota
	// GapPause stops at the start of the gap.
	GapPause
)

func ParseGapPolicy(s string) (GapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return GapSkip, nil
	case "pause":
		return GapPause, nil
	}
	return GapSkip, fmt.Errorf("unknown gap policy %q", s)
}

func (p GapPolicy) String() string {
	if p == GapPause {
		return "pause"
	}
	return "skip"
}

const MaxPlaybackRate = 4.0

// PlaybackState is session-scoped UI state; it is never persisted as part of the timeline.
type PlaybackState struct {
	PlayheadPositionMs int64     `json:"playheadPositionMs"`
	IsPlaying          bool      `json:"isPlaying"`
	PlaybackRate       float64   `json:"playbackRate"`
	ZoomLevel          ZoomLevel `json:"zoomLevel"`
	ScrollPositionMs   int64     `json:"scrollPositionMs"`
	SelectedClipID     string    `json:"selectedClipId,omitempty"`
	ActiveLane         int       `json:"activeLane"`
}

// Frame is what the player reports after a seek or a tick.
type Frame struct {
	PositionMs int64          `json:"positionMs"`
	Status     string         `json:"status"`
	Active     ActiveClipInfo `json:"active"`
	Skipped    bool           `json:"skipped,omitempty"`
}

// Player drives a playhead over a timeline.
type Player struct {
	State  PlaybackState
	Policy GapPolicy

	tl     *GameTimeline
	status PlaybackStatus
}

func NewPlayer(tl *GameTimeline, policy GapPolicy) *Player {
	lane := 1
	if lanes := tl.Lanes(); len(lanes) > 0 {
		lane = lanes[0].Number
	}
	return &Player{
		State: PlaybackState{
			PlaybackRate: 1,
			ZoomLevel:    DefaultZoom,
			ActiveLane:   lane,
		},
		Policy: policy,
		tl:     tl,
	}
}

func (p *Player) Status() PlaybackStatus {
	return p.status
}

func (p *Player) Play() {
	p.setStatus(Playing)
}

// Pause has no effect unless the player is playing.
func (p *Player) Pause() {
	if p.status == Playing {
		p.setStatus(Paused)
	}
}

func (p *Player) setStatus(s PlaybackStatus) {
	p.status = s
	p.State.IsPlaying = s == Playing
}

// Seek moves the playhead without changing the play/pause status.
func (p *Player) Seek(positionMs int64) Frame {
	if positionMs < 0 {
		positionMs = 0
	}
	p.State.PlayheadPositionMs = positionMs
	return p.frame(false)
}

// SetActiveLane switches the lane being watched and re-resolves at the playhead.
func (p *Player) SetActiveLane(lane int) Frame {
	p.State.ActiveLane = lane
	return p.frame(false)
}

func (p *Player) SetZoom(z ZoomLevel) error {
	if !z.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidZoom, z)
	}
	p.State.ZoomLevel = z
	return nil
}

func (p *Player) ZoomIn() {
	p.State.ZoomLevel = ZoomIn(p.State.ZoomLevel)
}

func (p *Player) ZoomOut() {
	p.State.ZoomLevel = ZoomOut(p.State.ZoomLevel)
}

func (p *Player) SetRate(rate float64) error {
	if rate <= 0 || rate > MaxPlaybackRate {
		return fmt.Errorf("playback rate %.2f outside (0, %.0f]", rate, MaxPlaybackRate)
	}
	p.State.PlaybackRate = rate
	return nil
}

func (p *Player) Select(clipID string) error {
	if clipID != "" {
		if _, c := p.tl.FindClip(clipID); c == nil {
			return fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
		}
	}
	p.State.SelectedClipID = clipID
	return nil
}

// ScrollTo sets the left edge of the visible window, in ms.
func (p *Player) ScrollTo(ms int64) {
	if ms < 0 {
		ms = 0
	}
	p.State.ScrollPositionMs = ms
}

// PlayheadPixels is the playhead's x offset relative to the scroll position.
func (p *Player) PlayheadPixels() float64 {
	return TimeToPixels(p.State.PlayheadPositionMs-p.State.ScrollPositionMs, p.State.ZoomLevel)
}

// Advance moves the playhead by elapsedMs of wall time while playing. Gap
// handling is a pure function of the resolved ActiveClipInfo and the policy.
func (p *Player) Advance(elapsedMs int64) Frame {
	if p.status != Playing {
		return p.frame(false)
	}
	step := int64(float64(elapsedMs) * p.State.PlaybackRate)
	p.State.PlayheadPositionMs += step

	if end := p.tl.PlaybackEndMs(); p.State.PlayheadPositionMs >= end {
		p.State.PlayheadPositionMs = end
		p.setStatus(Paused)
		return p.frame(false)
	}

	f := p.frame(false)
	if !f.Active.IsInGap {
		return f
	}
	if f.Active.NextClipStartMs != nil && p.Policy == GapSkip {
		p.State.PlayheadPositionMs = *f.Active.NextClipStartMs
		return p.frame(true)
	}
	p.setStatus(Paused)
	return p.frame(false)
}

// Resume seeks to a saved position if it can still be found on the timeline.
func (p *Player) Resume(pos *ResumePosition) (Frame, bool) {
	if pos == nil {
		return p.frame(false), false
	}
	lane, at, ok := p.tl.LocateSource(pos.VideoID, pos.PositionMs)
	if !ok {
		return p.frame(false), false
	}
	p.State.ActiveLane = lane
	return p.Seek(at), true
}

func (p *Player) frame(skipped bool) Frame {
	return Frame{
		PositionMs: p.State.PlayheadPositionMs,
		Status:     p.status.String(),
		Active:     p.tl.Resolve(p.State.ActiveLane, p.State.PlayheadPositionMs),
		Skipped:    skipped,
	}
}
