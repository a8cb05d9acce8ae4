package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"

	"gamefilm/models"
	"gamefilm/timeline"
)

// ErrRevisionConflict means the stored timeline changed since it was loaded.
var ErrRevisionConflict = errors.New("timeline revision conflict")

// TimelineRepository persists timelines and resume positions.
type TimelineRepository interface {
	LoadTimeline(ctx context.Context, gameID string) (*timeline.GameTimeline, int64, error)
	SaveTimeline(ctx context.Context, tl *timeline.GameTimeline, expectedRevision int64) (int64, error)
	DeleteTimeline(ctx context.Context, gameID string) error
	GetResumePosition(ctx context.Context, gameID, viewerID string) (*timeline.ResumePosition, error)
	SetResumePosition(ctx context.Context, pos timeline.ResumePosition) error
}

// TimelineStore is the gorm-backed TimelineRepository.
type TimelineStore struct {
	DB *gorm.DB
}

func NewTimelineStore(db *gorm.DB) *TimelineStore {
	return &TimelineStore{DB: db}
}

// LoadTimeline returns nil and revision 0 when the game has no timeline.
func (s *TimelineStore) LoadTimeline(ctx context.Context, gameID string) (*timeline.GameTimeline, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	var rec models.Timeline
	if err := s.DB.Where("game_id = ?", gameID).First(&rec).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("loading timeline %s: %w", gameID, err)
	}

	var doc timeline.Document
	if err := json.Unmarshal([]byte(rec.Document), &doc); err != nil {
		return nil, 0, fmt.Errorf("decoding timeline %s: %w", gameID, err)
	}
	tl, err := timeline.FromDocument(doc)
	if err != nil {
		return nil, 0, fmt.Errorf("timeline %s is inconsistent: %w", gameID, err)
	}
	tl.GameID = gameID
	tl.TimelineModeEnabled = rec.TimelineModeEnabled
	return tl, rec.Revision, nil
}

// SaveTimeline writes the whole document if the stored revision still equals
// expectedRevision (0 for a timeline that was never saved) and returns the
// new revision.
func (s *TimelineStore) SaveTimeline(ctx context.Context, tl *timeline.GameTimeline, expectedRevision int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	doc, err := json.Marshal(tl.Document())
	if err != nil {
		return 0, err
	}

	if expectedRevision == 0 {
		var existing models.Timeline
		err := s.DB.Where("game_id = ?", tl.GameID).First(&existing).Error
		if err == nil {
			return 0, fmt.Errorf("%w: %s already exists at revision %d", ErrRevisionConflict, tl.GameID, existing.Revision)
		}
		if !gorm.IsRecordNotFoundError(err) {
			return 0, err
		}
		rec := models.Timeline{
			GameID:              tl.GameID,
			Revision:            1,
			TimelineModeEnabled: tl.TimelineModeEnabled,
			TotalDurationMs:     tl.TotalDurationMs(),
			LaneCount:           len(tl.Lanes()),
			ClipCount:           tl.ClipCount(),
			Document:            string(doc),
		}
		if err := s.DB.Create(&rec).Error; err != nil {
			return 0, fmt.Errorf("creating timeline %s: %w", tl.GameID, err)
		}
		return 1, nil
	}

	res := s.DB.Model(&models.Timeline{}).
		Where("game_id = ? AND revision = ?", tl.GameID, expectedRevision).
		Updates(map[string]interface{}{
			"revision":              expectedRevision + 1,
			"timeline_mode_enabled": tl.TimelineModeEnabled,
			"total_duration_ms":     tl.TotalDurationMs(),
			"lane_count":            len(tl.Lanes()),
			"clip_count":            tl.ClipCount(),
			"document":              string(doc),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("saving timeline %s: %w", tl.GameID, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: %s is no longer at revision %d", ErrRevisionConflict, tl.GameID, expectedRevision)
	}
	return expectedRevision + 1, nil
}

func (s *TimelineStore) DeleteTimeline(ctx context.Context, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.DB.Unscoped().Where("game_id = ?", gameID).Delete(&models.Timeline{}).Error
}

func (s *TimelineStore) GetResumePosition(ctx context.Context, gameID, viewerID string) (*timeline.ResumePosition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec models.ResumePosition
	if err := s.DB.Where("game_id = ? AND viewer_id = ?", gameID, viewerID).First(&rec).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &timeline.ResumePosition{
		GameID:     rec.GameID,
		ViewerID:   rec.ViewerID,
		VideoID:    rec.VideoID,
		PositionMs: rec.PositionMs,
		Label:      rec.Label,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}

func (s *TimelineStore) SetResumePosition(ctx context.Context, pos timeline.ResumePosition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var rec models.ResumePosition
	err := s.DB.Where("game_id = ? AND viewer_id = ?", pos.GameID, pos.ViewerID).First(&rec).Error
	if gorm.IsRecordNotFoundError(err) {
		rec = models.ResumePosition{
			GameID:     pos.GameID,
			ViewerID:   pos.ViewerID,
			VideoID:    pos.VideoID,
			PositionMs: pos.PositionMs,
			Label:      pos.Label,
		}
		return s.DB.Create(&rec).Error
	}
	if err != nil {
		return err
	}
	return s.DB.Model(&rec).Updates(map[string]interface{}{
		"video_id":    pos.VideoID,
		"position_ms": pos.PositionMs,
		"label":       pos.Label,
		"updated_at":  time.Now(),
	}).Error
}
