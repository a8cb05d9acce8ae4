package timeline

import (
	"fmt"
	"math"
)

// BasePixelsPerSecond is the horizontal density of the timeline at zoom 1.
const BasePixelsPerSecond = 50

// ZoomLevel multiplies BasePixelsPerSecond. Only values in ZoomLevels are valid.
type ZoomLevel int

// ZoomLevels is the ordered set of selectable zoom levels.
var ZoomLevels = []ZoomLevel{1, 2, 4, 8, 16}

const DefaultZoom ZoomLevel = 1

func (z ZoomLevel) Valid() bool {
	for _, allowed := range ZoomLevels {
		if z == allowed {
			return true
		}
	}
	return false
}

// ParseZoom validates an externally supplied zoom level.
func ParseZoom(v int) (ZoomLevel, error) {
	z := ZoomLevel(v)
	if !z.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidZoom, v)
	}
	return z, nil
}

// ZoomIn returns the next larger zoom level, staying at the largest one.
func ZoomIn(z ZoomLevel) ZoomLevel {
	for i, allowed := range ZoomLevels {
		if allowed > z {
			return ZoomLevels[i]
		}
	}
	return ZoomLevels[len(ZoomLevels)-1]
}

// ZoomOut returns the next smaller zoom level, staying at the smallest one.
func ZoomOut(z ZoomLevel) ZoomLevel {
	for i := len(ZoomLevels) - 1; i >= 0; i-- {
		if ZoomLevels[i] < z {
			return ZoomLevels[i]
		}
	}
	return ZoomLevels[0]
}

// TimeToPixels converts a timeline position to a horizontal pixel offset.
func TimeToPixels(timeMs int64, z ZoomLevel) float64 {
	return float64(timeMs) * BasePixelsPerSecond * float64(z) / 1000
}

// PixelsToTime converts a pixel offset back to milliseconds, rounded to the nearest ms.
func PixelsToTime(pixels float64, z ZoomLevel) int64 {
	if z <= 0 {
		return 0
	}
	return int64(math.Round(pixels * 1000 / (BasePixelsPerSecond * float64(z))))
}
