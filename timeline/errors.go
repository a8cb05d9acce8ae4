package timeline

import (
	"errors"
	"fmt"
)

var (
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrClipOverlap      = errors.New("clip overlap")
	ErrClipNotFound     = errors.New("clip not found")
	ErrInvalidTrim      = errors.New("invalid trim")
	ErrLaneNotFound     = errors.New("lane not found")
	ErrInvalidLane      = errors.New("invalid lane")
	ErrInvalidZoom      = errors.New("invalid zoom level")
	ErrInvalidPosition  = errors.New("invalid position")
)

// OverlapError identifies the pair of clips whose intervals would intersect.
type OverlapError struct {
	Lane     int
	ClipID   string
	Conflict string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("clip overlap on lane %d: %s intersects %s", e.Lane, e.ClipID, e.Conflict)
}

func (e *OverlapError) Unwrap() error {
	return ErrClipOverlap
}
