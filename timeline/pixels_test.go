package timeline

import (
	"errors"
	"testing"
)

func TestTimeToPixels(t *testing.T) {
	if got := TimeToPixels(1000, 1); got != BasePixelsPerSecond {
		t.Errorf("Expected %d px for one second at zoom 1, got %v", BasePixelsPerSecond, got)
	}
	if got := TimeToPixels(2500, 4); got != 500 {
		t.Errorf("Expected 500 px, got %v", got)
	}
}

func TestPixelsTimeRoundTrip(t *testing.T) {
	times := []int64{0, 1, 19, 999, 1000, 5000, 61_234, 3_600_000, 7_200_001}
	for _, z := range ZoomLevels {
		for _, ms := range times {
			back := PixelsToTime(TimeToPixels(ms, z), z)
			diff := back - ms
			if diff < 0 {
				diff = -diff
			}
			if diff > DefaultGridMs {
				t.Errorf("zoom %d: %dms came back as %dms", z, ms, back)
			}
		}
	}
}

func TestPixelsToTimeRoundsWholePixels(t *testing.T) {
	// One pixel at zoom 1 is 20ms.
	ms := PixelsToTime(TimeToPixels(1234, 1), 1)
	if ms != 1234 {
		t.Errorf("Expected exact inverse for unrounded pixels, got %d", ms)
	}
	if got := PixelsToTime(61, 1); got != 1220 {
		t.Errorf("Expected 1220ms for 61px, got %d", got)
	}
}

func TestParseZoom(t *testing.T) {
	for _, v := range []int{1, 2, 4, 8, 16} {
		if _, err := ParseZoom(v); err != nil {
			t.Errorf("zoom %d should be valid: %v", v, err)
		}
	}
	for _, v := range []int{0, 3, 32, -1} {
		if _, err := ParseZoom(v); !errors.Is(err, ErrInvalidZoom) {
			t.Errorf("zoom %d should be rejected, got %v", v, err)
		}
	}
}

func TestZoomStepping(t *testing.T) {
	if ZoomIn(1) != 2 || ZoomIn(8) != 16 || ZoomIn(16) != 16 {
		t.Error("ZoomIn should step up the ordered set and clamp at the top")
	}
	if ZoomOut(16) != 8 || ZoomOut(2) != 1 || ZoomOut(1) != 1 {
		t.Error("ZoomOut should step down the ordered set and clamp at the bottom")
	}
}
