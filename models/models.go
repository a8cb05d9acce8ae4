package models

import (
	"time"
)

// Timeline stores one game's timeline document. Revision increases by one on
// every successful save and guards against lost updates.
type Timeline struct {
	ID        uint       `gorm:"primary_key" json:"ID"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `sql:"index" json:"-"`

	GameID              string `json:"game_id" gorm:"unique_index;not null"`
	Revision            int64  `json:"revision"`
	TimelineModeEnabled bool   `json:"timeline_mode_enabled"`
	TotalDurationMs     int64  `json:"total_duration_ms"`
	LaneCount           int    `json:"lane_count"`
	ClipCount           int    `json:"clip_count"`
	Document            string `json:"-" gorm:"type:text"` // JSON timeline.Document
}

// ResumePosition is the last playback position of one viewer on one game.
type ResumePosition struct {
	ID        uint      `gorm:"primary_key" json:"ID"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`

	GameID     string `json:"game_id" gorm:"unique_index:idx_resume_game_viewer;not null"`
	ViewerID   string `json:"viewer_id" gorm:"unique_index:idx_resume_game_viewer;not null"`
	VideoID    string `json:"video_id"`
	PositionMs int64  `json:"position_ms"`
	Label      string `json:"label"` // e.g. "Q2 8:41"
}

// Video is a source recording found in the footage library.
type Video struct {
	ID        string     `gorm:"primary_key" json:"id"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
	DeletedAt *time.Time `sql:"index" json:"-"`

	FilePath   string    `json:"file_path" gorm:"unique_index"`
	Title      string    `json:"title"`
	Camera     string    `json:"camera"` // "Sideline", "End Zone", etc.
	DurationMs int64     `json:"duration_ms"`
	SizeBytes  int64     `json:"size_bytes"`
	RecordedAt time.Time `json:"recorded_at" gorm:"index"`
}
