package timeline

// Preview is the projected outcome of an in-progress drag or resize. It is
// computed against a throwaway copy and never touches the committed timeline.
type Preview struct {
	ClipID         string   `json:"clipId"`
	Lane           int      `json:"lane"`
	Interval       Interval `json:"interval"`
	LanePositionMs int64    `json:"lanePositionMs"`
	DurationMs     int64    `json:"durationMs"`
	Valid          bool     `json:"valid"`
	Err            error    `json:"-"`
}

// PreviewMove reports where a dragged clip would land and whether dropping it
// there would be accepted.
func (e *Engine) PreviewMove(tl *GameTimeline, clipID string, toLane int, positionMs int64) Preview {
	scratch := tl.Clone()
	res, err := e.MoveClip(scratch, clipID, toLane, positionMs)
	return projection(clipID, toLane, e.Snap(positionMs), res, err, tl)
}

// PreviewTrim reports the interval a clip would occupy after a resize.
func (e *Engine) PreviewTrim(tl *GameTimeline, clipID string, startOffsetMs int64, endOffsetMs *int64) Preview {
	scratch := tl.Clone()
	res, err := e.TrimClip(scratch, clipID, startOffsetMs, endOffsetMs)
	lane := 0
	var pos int64
	if l, c := tl.FindClip(clipID); c != nil {
		lane, pos = l.Number, c.LanePositionMs
	}
	return projection(clipID, lane, pos, res, err, tl)
}

func projection(clipID string, lane int, pos int64, res Result, err error, tl *GameTimeline) Preview {
	p := Preview{ClipID: clipID, Lane: lane, LanePositionMs: pos, Valid: err == nil, Err: err}
	if err == nil {
		p.LanePositionMs = res.Clip.LanePositionMs
		p.DurationMs = res.Clip.DurationMs()
		p.Interval = res.Clip.Interval()
		return p
	}
	if _, c := tl.FindClip(clipID); c != nil {
		p.DurationMs = c.DurationMs()
		p.Interval = Interval{StartMs: pos, EndMs: pos + p.DurationMs}
	}
	return p
}
