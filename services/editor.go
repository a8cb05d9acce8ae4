package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gamefilm/metrics"
	"gamefilm/reporting"
	"gamefilm/timeline"
)

var (
	// ErrTimelineNotFound is returned for games that never enabled multi-camera mode.
	ErrTimelineNotFound = errors.New("timeline not found")
	// ErrUnsaved wraps persistence failures. The in-memory change was rolled
	// back, or kept and flagged as unsaved if newer edits were made on top of it.
	ErrUnsaved = errors.New("timeline changes not saved")
)

// VideoCatalog looks up source recordings.
type VideoCatalog interface {
	Video(ctx context.Context, id string) (timeline.VideoAsset, error)
}

// TimelineView is a timeline snapshot plus its persistence status.
type TimelineView struct {
	timeline.Document
	Revision       int64 `json:"revision"`
	UnsavedChanges bool  `json:"unsavedChanges"`
}

// Editor owns the in-memory timelines being edited and keeps them in step
// with the store. One editor per game is assumed.
type Editor struct {
	Store             TimelineRepository
	Videos            VideoCatalog
	Engine            *timeline.Engine
	ResumeToleranceMs int64

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu    sync.Mutex // guards tl, seq and dirty
	tl    *timeline.GameTimeline
	seq   uint64
	dirty bool

	saveMu   sync.Mutex // serializes writes; guards savedSeq and revision
	savedSeq uint64
	revision int64
}

func NewEditor(store TimelineRepository, videos VideoCatalog, engine *timeline.Engine) *Editor {
	if engine == nil {
		engine = timeline.NewEngine()
	}
	return &Editor{
		Store:             store,
		Videos:            videos,
		Engine:            engine,
		ResumeToleranceMs: timeline.ResumeToleranceMs,
		sessions:          make(map[string]*session),
	}
}

func (e *Editor) session(ctx context.Context, gameID string) (*session, error) {
	e.mu.Lock()
	s, ok := e.sessions[gameID]
	e.mu.Unlock()
	if ok {
		return s, nil
	}

	// e.mu is not held while loading; another load may win the insert.
	tl, rev, err := e.Store.LoadTimeline(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if tl == nil {
		return nil, fmt.Errorf("%w: %s", ErrTimelineNotFound, gameID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[gameID]; ok {
		return s, nil
	}
	s = &session{tl: tl, revision: rev}
	e.sessions[gameID] = s
	return s, nil
}

func (e *Editor) drop(gameID string) {
	e.mu.Lock()
	delete(e.sessions, gameID)
	e.mu.Unlock()
}

func (s *session) view() TimelineView {
	s.mu.Lock()
	doc := s.tl.Document()
	dirty := s.dirty
	s.mu.Unlock()

	s.saveMu.Lock()
	rev := s.revision
	s.saveMu.Unlock()
	return TimelineView{Document: doc, Revision: rev, UnsavedChanges: dirty}
}

// Timeline returns the current state of a game's timeline.
func (e *Editor) Timeline(ctx context.Context, gameID string) (TimelineView, error) {
	s, err := e.session(ctx, gameID)
	if err != nil {
		return TimelineView{}, err
	}
	return s.view(), nil
}

// Enable turns on multi-camera mode, creating an empty timeline if needed.
func (e *Editor) Enable(ctx context.Context, gameID string) (TimelineView, error) {
	s, err := e.session(ctx, gameID)
	if errors.Is(err, ErrTimelineNotFound) {
		e.mu.Lock()
		s = e.sessions[gameID]
		if s == nil {
			s = &session{tl: timeline.New(gameID)}
			e.sessions[gameID] = s
		}
		e.mu.Unlock()

		s.mu.Lock()
		s.seq++
		seq, snap := s.seq, s.tl.Clone()
		s.mu.Unlock()
		if err := e.persist(ctx, gameID, s, seq, snap); err != nil {
			e.drop(gameID)
			return TimelineView{}, fmt.Errorf("%w: %w", ErrUnsaved, err)
		}
		log.Printf("[EDITOR] Multi-camera timeline created for game %s", gameID)
		return s.view(), nil
	}
	if err != nil {
		return TimelineView{}, err
	}

	_, err = e.mutate(ctx, gameID, timeline.OpEnable, func(tl *timeline.GameTimeline) (timeline.Result, error) {
		changed := !tl.TimelineModeEnabled
		tl.TimelineModeEnabled = true
		return timeline.Result{Op: timeline.OpEnable, Changed: changed, TotalDurationMs: tl.TotalDurationMs()}, nil
	})
	if err != nil {
		return TimelineView{}, err
	}
	return s.view(), nil
}

// Reset deletes the timeline; the game falls back to single-video playback.
func (e *Editor) Reset(ctx context.Context, gameID string) error {
	if err := e.Store.DeleteTimeline(ctx, gameID); err != nil {
		return err
	}
	e.drop(gameID)
	log.Printf("[EDITOR] Timeline for game %s reset", gameID)
	return nil
}

// mutate applies fn optimistically and then persists the result. Rejected
// mutations leave the timeline untouched and are never written.
func (e *Editor) mutate(ctx context.Context, gameID string, op timeline.Op, fn func(*timeline.GameTimeline) (timeline.Result, error)) (timeline.Result, error) {
	s, err := e.session(ctx, gameID)
	if err != nil {
		return timeline.Result{}, err
	}

	s.mu.Lock()
	before := s.tl.Clone()
	res, err := fn(s.tl)
	if err != nil {
		s.mu.Unlock()
		metrics.RecordMutation(string(op), outcome(err))
		return timeline.Result{}, err
	}
	if !res.Changed {
		s.mu.Unlock()
		metrics.RecordMutation(string(op), "noop")
		return res, nil
	}
	s.seq++
	seq, snap := s.seq, s.tl.Clone()
	s.mu.Unlock()

	if err := e.persist(ctx, gameID, s, seq, snap); err != nil {
		s.saveMu.Lock()
		s.mu.Lock()
		rolledBack := s.seq == seq
		if rolledBack {
			s.tl = before
		} else {
			// A newer edit may already have saved everything.
			s.dirty = s.savedSeq < s.seq
		}
		s.mu.Unlock()
		s.saveMu.Unlock()
		if rolledBack && errors.Is(err, ErrRevisionConflict) {
			e.drop(gameID)
		}
		metrics.RecordMutation(string(op), "unsaved")
		log.Printf("[EDITOR] %s on game %s not saved (rolled back: %v): %v", op, gameID, rolledBack, err)
		return timeline.Result{}, fmt.Errorf("%w: %w", ErrUnsaved, err)
	}
	metrics.RecordMutation(string(op), "ok")
	return res, nil
}

// persist writes snap unless a newer mutation has already been saved, so
// out-of-order completions never overwrite later state.
func (e *Editor) persist(ctx context.Context, gameID string, s *session, seq uint64, snap *timeline.GameTimeline) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if seq <= s.savedSeq {
		metrics.RecordStaleWrite()
		s.mu.Lock()
		if s.seq <= s.savedSeq {
			s.dirty = false
		}
		s.mu.Unlock()
		return nil
	}

	start := time.Now()
	rev, err := e.Store.SaveTimeline(ctx, snap, s.revision)
	metrics.RecordSave(time.Since(start), err)
	if err != nil {
		reporting.CaptureError(err, map[string]interface{}{
			"game_id":  gameID,
			"sequence": seq,
			"revision": s.revision,
		})
		return err
	}
	s.revision = rev
	s.savedSeq = seq

	s.mu.Lock()
	if s.seq == seq {
		s.dirty = false
	}
	s.mu.Unlock()
	return nil
}

// Flush retries saving a timeline that has unsaved changes.
func (e *Editor) Flush(ctx context.Context, gameID string) (TimelineView, error) {
	s, err := e.session(ctx, gameID)
	if err != nil {
		return TimelineView{}, err
	}
	s.mu.Lock()
	dirty := s.dirty
	seq, snap := s.seq, s.tl.Clone()
	s.mu.Unlock()

	if dirty {
		if err := e.persist(ctx, gameID, s, seq, snap); err != nil {
			return s.view(), fmt.Errorf("%w: %w", ErrUnsaved, err)
		}
	}
	return s.view(), nil
}

func (e *Editor) AddLane(ctx context.Context, gameID, label string) (timeline.Result, error) {
	return e.mutate(ctx, gameID, timeline.OpAddLane, func(tl *timeline.GameTimeline) (timeline.Result, error) {
		l, err := tl.AddLane(label)
		if err != nil {
			return timeline.Result{}, err
		}
		return timeline.Result{Op: timeline.OpAddLane, Lane: l.Number, LaneCreated: true, Changed: true, TotalDurationMs: tl.TotalDurationMs()}, nil
	})
}

func (e *Editor) SetLabel(ctx context.Context, gameID string, lane int, label string) (timeline.Result, error) {
	return e.UpdateLane(ctx, gameID, lane, &label, nil)
}

// UpdateLane changes a lane's label and sync offset as one edit. Nil fields
// are left as they are.
func (e *Editor) UpdateLane(ctx context.Context, gameID string, lane int, label *string, offsetMs *int64) (timeline.Result, error) {
	op := timeline.OpLabel
	if label == nil {
		op = timeline.OpSyncOffset
	}
	return e.mutate(ctx, gameID, op, func(tl *timeline.GameTimeline) (timeline.Result, error) {
		if _, ok := tl.Lane(lane); !ok {
			return timeline.Result{}, fmt.Errorf("%w: %d", timeline.ErrLaneNotFound, lane)
		}
		if label != nil {
			if err := tl.SetLabel(lane, *label); err != nil {
				return timeline.Result{}, err
			}
		}
		if offsetMs != nil {
			if err := tl.SetSyncOffset(lane, *offsetMs); err != nil {
				return timeline.Result{}, err
			}
		}
		changed := label != nil || offsetMs != nil
		return timeline.Result{Op: op, Lane: lane, Changed: changed, TotalDurationMs: tl.TotalDurationMs()}, nil
	})
}

func (e *Editor) SetSyncOffset(ctx context.Context, gameID string, lane int, offsetMs int64) (timeline.Result, error) {
	return e.UpdateLane(ctx, gameID, lane, nil, &offsetMs)
}

// PlaceClip looks up the video's metadata and places it on a lane.
func (e *Editor) PlaceClip(ctx context.Context, gameID string, lane int, videoID string, positionMs int64, trim *timeline.Trim) (timeline.Result, error) {
	video, err := e.Videos.Video(ctx, videoID)
	if err != nil {
		return timeline.Result{}, err
	}
	return e.mutate(ctx, gameID, timeline.OpPlace, func(tl *timeline.GameTimeline) (timeline.Result, error) {
		res, err := e.Engine.PlaceClip(tl, lane, video, positionMs, trim)
		if err == nil {
			tl.TimelineModeEnabled = true
		}
		return res, err
	})
}

func (e *Editor) MoveClip(ctx context.Context, gameID, clipID string, lane int, positionMs int64) (timeline.Result, error) {
	return e.mutate(ctx, gameID, timeline.OpMove, func(tl *timeline.GameTimeline) (timeline.Result, error) {
		return e.Engine.MoveClip(tl, clipID, lane, positionMs)
	})
}

func (e *Editor) TrimClip(ctx context.Context, gameID, clipID string, startOffsetMs int64, endOffsetMs *int64) (timeline.Result, error) {
	return e.mutate(ctx, gameID, timeline.OpTrim, func(tl *timeline.GameTimeline) (timeline.Result, error) {
		return e.Engine.TrimClip(tl, clipID, startOffsetMs, endOffsetMs)
	})
}

// RemoveClip deletes a clip. Removing the last clip reverts the game to
// single-video mode; the lanes stay until the timeline is reset.
func (e *Editor) RemoveClip(ctx context.Context, gameID, clipID string) (timeline.Result, error) {
	return e.mutate(ctx, gameID, timeline.OpRemove, func(tl *timeline.GameTimeline) (timeline.Result, error) {
		res, err := e.Engine.RemoveClip(tl, clipID)
		if err == nil && tl.ClipCount() == 0 {
			tl.TimelineModeEnabled = false
		}
		return res, err
	})
}

func (e *Editor) PreviewMove(ctx context.Context, gameID, clipID string, lane int, positionMs int64) (timeline.Preview, error) {
	s, err := e.session(ctx, gameID)
	if err != nil {
		return timeline.Preview{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.Engine.PreviewMove(s.tl, clipID, lane, positionMs), nil
}

func (e *Editor) PreviewTrim(ctx context.Context, gameID, clipID string, startOffsetMs int64, endOffsetMs *int64) (timeline.Preview, error) {
	s, err := e.session(ctx, gameID)
	if err != nil {
		return timeline.Preview{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.Engine.PreviewTrim(s.tl, clipID, startOffsetMs, endOffsetMs), nil
}

// Resolve answers which clip plays on lane at gameTimeMs.
func (e *Editor) Resolve(ctx context.Context, gameID string, lane int, gameTimeMs int64) (timeline.ActiveClipInfo, error) {
	s, err := e.session(ctx, gameID)
	if err != nil {
		return timeline.ActiveClipInfo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.RecordResolve(1)
	return s.tl.Resolve(lane, gameTimeMs), nil
}

func (e *Editor) ResolveAll(ctx context.Context, gameID string, gameTimeMs int64) ([]timeline.ActiveClipInfo, error) {
	s, err := e.session(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	infos := s.tl.ResolveAll(gameTimeMs)
	metrics.RecordResolve(len(infos))
	return infos, nil
}

// Snapshot returns a private copy of the timeline, e.g. to drive a Player.
func (e *Editor) Snapshot(ctx context.Context, gameID string) (*timeline.GameTimeline, error) {
	s, err := e.session(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tl.Clone(), nil
}

// Resume returns the viewer's saved position and whether it is far enough from
// where they are now to be worth offering.
func (e *Editor) Resume(ctx context.Context, gameID, viewerID, currentVideoID string, currentPositionMs int64) (*timeline.ResumePosition, bool, error) {
	pos, err := e.Store.GetResumePosition(ctx, gameID, viewerID)
	if err != nil {
		return nil, false, err
	}
	return pos, timeline.ShouldResume(pos, currentVideoID, currentPositionMs, e.ResumeToleranceMs), nil
}

func (e *Editor) SaveResume(ctx context.Context, pos timeline.ResumePosition) (timeline.ResumePosition, error) {
	if pos.GameID == "" || pos.ViewerID == "" || pos.VideoID == "" {
		return pos, errors.New("game, viewer and video are required")
	}
	if pos.PositionMs < 0 {
		return pos, fmt.Errorf("%w: %d", timeline.ErrInvalidPosition, pos.PositionMs)
	}
	if pos.Label == "" {
		pos.Label = timeline.ClockLabel(pos.PositionMs)
	}
	if err := e.Store.SetResumePosition(ctx, pos); err != nil {
		reporting.CaptureError(err, map[string]interface{}{"game_id": pos.GameID, "viewer_id": pos.ViewerID})
		return pos, fmt.Errorf("%w: %w", ErrUnsaved, err)
	}
	pos.UpdatedAt = time.Now()
	return pos, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, timeline.ErrClipOverlap):
		return "overlap"
	case errors.Is(err, timeline.ErrCapacityExceeded):
		return "capacity"
	case errors.Is(err, timeline.ErrClipNotFound):
		return "not_found"
	case errors.Is(err, timeline.ErrInvalidTrim):
		return "invalid_trim"
	}
	return "rejected"
}
