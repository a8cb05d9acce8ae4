package timeline

import "fmt"

// VideoAsset is the metadata the engine needs about a source recording.
// The engine never owns or mutates the recording itself.
type VideoAsset struct {
	ID           string `json:"id"`
	DurationMs   int64  `json:"durationMs"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// Trim is a window into a source recording. A nil EndOffsetMs plays to the end of the source.
type Trim struct {
	StartOffsetMs int64  `json:"startOffsetMs"`
	EndOffsetMs   *int64 `json:"endOffsetMs"`
}

// Interval is a half-open [StartMs, EndMs) span on a lane.
type Interval struct {
	StartMs int64 `json:"startMs"`
	EndMs   int64 `json:"endMs"`
}

func (iv Interval) Overlaps(other Interval) bool {
	return iv.StartMs < other.EndMs && other.StartMs < iv.EndMs
}

func (iv Interval) Contains(t int64) bool {
	return iv.StartMs <= t && t < iv.EndMs
}

// Clip is a trimmed segment of a source recording placed on a lane.
type Clip struct {
	ID               string
	VideoID          string
	LanePositionMs   int64
	StartOffsetMs    int64
	EndOffsetMs      *int64
	SourceDurationMs int64
}

// NewClip builds a clip and rejects inverted or empty trim windows.
func NewClip(id, videoID string, positionMs int64, trim Trim, sourceDurationMs int64) (*Clip, error) {
	c := &Clip{
		ID:               id,
		VideoID:          videoID,
		LanePositionMs:   positionMs,
		StartOffsetMs:    trim.StartOffsetMs,
		EndOffsetMs:      copyOffset(trim.EndOffsetMs),
		SourceDurationMs: sourceDurationMs,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Clip) validate() error {
	if c.LanePositionMs < 0 {
		return fmt.Errorf("%w: lane position %d is negative", ErrInvalidPosition, c.LanePositionMs)
	}
	if c.StartOffsetMs < 0 {
		return fmt.Errorf("%w: start offset %d is negative", ErrInvalidTrim, c.StartOffsetMs)
	}
	if c.EndOffsetMs != nil {
		if c.StartOffsetMs >= *c.EndOffsetMs {
			return fmt.Errorf("%w: start %d is not before end %d", ErrInvalidTrim, c.StartOffsetMs, *c.EndOffsetMs)
		}
		if c.SourceDurationMs > 0 && *c.EndOffsetMs > c.SourceDurationMs {
			return fmt.Errorf("%w: end %d is past source duration %d", ErrInvalidTrim, *c.EndOffsetMs, c.SourceDurationMs)
		}
	}
	if c.DurationMs() <= 0 {
		return fmt.Errorf("%w: clip %s has no duration", ErrInvalidTrim, c.ID)
	}
	return nil
}

// DurationMs is the length of the trim window.
func (c *Clip) DurationMs() int64 {
	if c.EndOffsetMs != nil {
		return *c.EndOffsetMs - c.StartOffsetMs
	}
	return c.SourceDurationMs - c.StartOffsetMs
}

func (c *Clip) EndMs() int64 {
	return c.LanePositionMs + c.DurationMs()
}

func (c *Clip) Interval() Interval {
	return Interval{StartMs: c.LanePositionMs, EndMs: c.EndMs()}
}

func (c *Clip) Overlaps(other *Clip) bool {
	return c.Interval().Overlaps(other.Interval())
}

func (c *Clip) Contains(t int64) bool {
	return c.Interval().Contains(t)
}

func (c *Clip) Trim() Trim {
	return Trim{StartOffsetMs: c.StartOffsetMs, EndOffsetMs: copyOffset(c.EndOffsetMs)}
}

// Clone returns an independent copy, safe to hand to callers.
func (c *Clip) Clone() *Clip {
	if c == nil {
		return nil
	}
	cp := *c
	cp.EndOffsetMs = copyOffset(c.EndOffsetMs)
	return &cp
}

func copyOffset(v *int64) *int64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// Ms is a small helper for building optional offsets.
func Ms(v int64) *int64 {
	return &v
}
