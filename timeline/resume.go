package timeline

import (
	"fmt"
	"time"
)

// ResumeToleranceMs is how close the current position must be to a saved one
// for the saved position to be ignored.
const ResumeToleranceMs = 5000

// ResumePosition is the last place a viewer stopped reviewing a game.
type ResumePosition struct {
	GameID     string    `json:"gameId"`
	ViewerID   string    `json:"viewerId"`
	VideoID    string    `json:"videoId"`
	PositionMs int64     `json:"positionMs"`
	Label      string    `json:"label,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ShouldResume reports whether saved is worth offering given where the viewer is now.
func ShouldResume(saved *ResumePosition, currentVideoID string, currentPositionMs int64, toleranceMs int64) bool {
	if saved == nil || saved.VideoID == "" {
		return false
	}
	if saved.VideoID != currentVideoID {
		return true
	}
	diff := saved.PositionMs - currentPositionMs
	if diff < 0 {
		diff = -diff
	}
	return diff > toleranceMs
}

// ClockLabel renders a position as m:ss, or h:mm:ss past the hour.
func ClockLabel(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
