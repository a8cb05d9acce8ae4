package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamefilm/models"
	"gamefilm/timeline"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	// Every pooled connection to :memory: would get its own empty database.
	db.DB().SetMaxOpenConns(1)
	db.AutoMigrate(&models.Timeline{}, &models.ResumePosition{}, &models.Video{})
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleTimeline(t *testing.T, gameID string) *timeline.GameTimeline {
	t.Helper()
	tl := timeline.New(gameID)
	eng := timeline.NewEngine()
	_, err := eng.PlaceClip(tl, 1, timeline.VideoAsset{ID: "v-side", DurationMs: 60000}, 0, nil)
	require.NoError(t, err)
	_, err = eng.PlaceClip(tl, 2, timeline.VideoAsset{ID: "v-end", DurationMs: 30000}, 10000, &timeline.Trim{StartOffsetMs: 5000})
	require.NoError(t, err)
	require.NoError(t, tl.SetLabel(2, "End Zone"))
	return tl
}

func TestTimelineStore_RoundTrip(t *testing.T) {
	store := NewTimelineStore(newTestDB(t))
	ctx := context.Background()

	tl, rev, err := store.LoadTimeline(ctx, "game-1")
	require.NoError(t, err)
	assert.Nil(t, tl)
	assert.Zero(t, rev)

	orig := sampleTimeline(t, "game-1")
	rev, err = store.SaveTimeline(ctx, orig, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)

	loaded, rev, err := store.LoadTimeline(ctx, "game-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(1), rev)
	assert.Equal(t, orig.Document(), loaded.Document())

	var rec models.Timeline
	require.NoError(t, store.DB.Where("game_id = ?", "game-1").First(&rec).Error)
	assert.Equal(t, 2, rec.LaneCount)
	assert.Equal(t, 2, rec.ClipCount)
	assert.Equal(t, int64(60000), rec.TotalDurationMs)
}

func TestTimelineStore_RevisionConflict(t *testing.T) {
	store := NewTimelineStore(newTestDB(t))
	ctx := context.Background()
	tl := sampleTimeline(t, "game-1")

	_, err := store.SaveTimeline(ctx, tl, 0)
	require.NoError(t, err)

	_, err = store.SaveTimeline(ctx, tl, 0)
	assert.True(t, errors.Is(err, ErrRevisionConflict), "second create should conflict, got %v", err)

	rev, err := store.SaveTimeline(ctx, tl, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)

	_, err = store.SaveTimeline(ctx, tl, 1)
	assert.True(t, errors.Is(err, ErrRevisionConflict), "stale revision should conflict, got %v", err)
}

func TestTimelineStore_Delete(t *testing.T) {
	store := NewTimelineStore(newTestDB(t))
	ctx := context.Background()

	_, err := store.SaveTimeline(ctx, sampleTimeline(t, "game-1"), 0)
	require.NoError(t, err)
	require.NoError(t, store.DeleteTimeline(ctx, "game-1"))

	tl, _, err := store.LoadTimeline(ctx, "game-1")
	require.NoError(t, err)
	assert.Nil(t, tl)

	// A reset game can be enabled again from scratch.
	_, err = store.SaveTimeline(ctx, timeline.New("game-1"), 0)
	assert.NoError(t, err)
}

func TestTimelineStore_RejectsCorruptDocument(t *testing.T) {
	db := newTestDB(t)
	store := NewTimelineStore(db)
	require.NoError(t, db.Create(&models.Timeline{GameID: "game-1", Revision: 1, Document: "{not json"}).Error)

	_, _, err := store.LoadTimeline(context.Background(), "game-1")
	assert.Error(t, err)
}

func TestTimelineStore_ResumePositionUpsert(t *testing.T) {
	store := NewTimelineStore(newTestDB(t))
	ctx := context.Background()

	pos, err := store.GetResumePosition(ctx, "game-1", "coach")
	require.NoError(t, err)
	assert.Nil(t, pos)

	require.NoError(t, store.SetResumePosition(ctx, timeline.ResumePosition{
		GameID: "game-1", ViewerID: "coach", VideoID: "v-side", PositionMs: 521000, Label: "Q2 8:41",
	}))
	require.NoError(t, store.SetResumePosition(ctx, timeline.ResumePosition{
		GameID: "game-1", ViewerID: "coach", VideoID: "v-end", PositionMs: 90000, Label: "1:30",
	}))

	pos, err = store.GetResumePosition(ctx, "game-1", "coach")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, "v-end", pos.VideoID)
	assert.Equal(t, int64(90000), pos.PositionMs)
	assert.Equal(t, "1:30", pos.Label)

	var count int
	store.DB.Model(&models.ResumePosition{}).Count(&count)
	assert.Equal(t, 1, count)
}
