package timeline

import (
	"encoding/json"
	"fmt"
)

// Document is the persisted form of a GameTimeline. Field names follow the
// data model one to one.
type Document struct {
	GameID              string         `json:"gameId"`
	TotalDurationMs     int64          `json:"totalDurationMs"`
	Lanes               []LaneDocument `json:"lanes"`
	TimelineModeEnabled bool           `json:"timelineModeEnabled"`
}

type LaneDocument struct {
	Lane         int            `json:"lane"`
	Label        string         `json:"label"`
	SyncOffsetMs int64          `json:"syncOffsetMs"`
	Clips        []ClipDocument `json:"clips"`
}

type ClipDocument struct {
	ID               string `json:"id"`
	VideoID          string `json:"videoId"`
	LanePositionMs   int64  `json:"lanePositionMs"`
	StartOffsetMs    int64  `json:"startOffsetMs"`
	EndOffsetMs      *int64 `json:"endOffsetMs"`
	DurationMs       int64  `json:"durationMs"`
	SourceDurationMs int64  `json:"sourceDurationMs,omitempty"`
}

func clipDocument(c *Clip) ClipDocument {
	return ClipDocument{
		ID:               c.ID,
		VideoID:          c.VideoID,
		LanePositionMs:   c.LanePositionMs,
		StartOffsetMs:    c.StartOffsetMs,
		EndOffsetMs:      copyOffset(c.EndOffsetMs),
		DurationMs:       c.DurationMs(),
		SourceDurationMs: c.SourceDurationMs,
	}
}

// Document returns the wire form of a single clip.
func (c *Clip) Document() ClipDocument {
	return clipDocument(c)
}

func (c *Clip) MarshalJSON() ([]byte, error) {
	return json.Marshal(clipDocument(c))
}

// Document snapshots the timeline into its wire form.
func (t *GameTimeline) Document() Document {
	doc := Document{
		GameID:              t.GameID,
		TotalDurationMs:     t.totalDurationMs,
		Lanes:               make([]LaneDocument, 0, len(t.lanes)),
		TimelineModeEnabled: t.TimelineModeEnabled,
	}
	for _, l := range t.lanes {
		ld := LaneDocument{
			Lane:         l.Number,
			Label:        l.Label,
			SyncOffsetMs: l.SyncOffsetMs,
			Clips:        make([]ClipDocument, 0, l.Len()),
		}
		for _, c := range l.ordered() {
			ld.Clips = append(ld.Clips, clipDocument(c))
		}
		doc.Lanes = append(doc.Lanes, ld)
	}
	return doc
}

// FromDocument rebuilds a timeline, re-validating every clip and the
// no-overlap invariant. A stored durationMs is only trusted when the source
// duration was never recorded and the clip is open-ended.
func FromDocument(doc Document) (*GameTimeline, error) {
	tl := &GameTimeline{GameID: doc.GameID, TimelineModeEnabled: doc.TimelineModeEnabled}
	for _, ld := range doc.Lanes {
		if _, ok := tl.Lane(ld.Lane); ok {
			return nil, fmt.Errorf("%w: lane %d listed twice", ErrInvalidLane, ld.Lane)
		}
		if err := tl.canCreateLane(ld.Lane); err != nil {
			return nil, err
		}
		lane := tl.createLane(ld.Lane, ld.Label)
		lane.SyncOffsetMs = ld.SyncOffsetMs
		for _, cd := range ld.Clips {
			source := cd.SourceDurationMs
			if source == 0 && cd.EndOffsetMs == nil {
				source = cd.StartOffsetMs + cd.DurationMs
			}
			clip, err := NewClip(cd.ID, cd.VideoID, cd.LanePositionMs, Trim{StartOffsetMs: cd.StartOffsetMs, EndOffsetMs: cd.EndOffsetMs}, source)
			if err != nil {
				return nil, fmt.Errorf("clip %s: %w", cd.ID, err)
			}
			if _, existing := tl.FindClip(clip.ID); existing != nil {
				return nil, fmt.Errorf("clip %s listed twice", clip.ID)
			}
			if err := lane.checkPlacement(clip, ""); err != nil {
				return nil, err
			}
			lane.insert(clip)
		}
	}
	tl.recompute()
	return tl, nil
}

func (t *GameTimeline) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Document())
}

func (t *GameTimeline) UnmarshalJSON(data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	parsed, err := FromDocument(doc)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}
