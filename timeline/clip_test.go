package timeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClip_Duration(t *testing.T) {
	c, err := NewClip("c1", "v1", 2000, Trim{StartOffsetMs: 1000, EndOffsetMs: Ms(4000)}, 60000)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), c.DurationMs())
	assert.Equal(t, Interval{StartMs: 2000, EndMs: 5000}, c.Interval())

	open, err := NewClip("c2", "v1", 0, Trim{StartOffsetMs: 10000}, 60000)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), open.DurationMs(), "open-ended trim runs to the end of the source")
}

func TestNewClip_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		pos    int64
		trim   Trim
		source int64
		want   error
	}{
		{"inverted offsets", 0, Trim{StartOffsetMs: 5000, EndOffsetMs: Ms(1000)}, 60000, ErrInvalidTrim},
		{"equal offsets", 0, Trim{StartOffsetMs: 5000, EndOffsetMs: Ms(5000)}, 60000, ErrInvalidTrim},
		{"negative start", 0, Trim{StartOffsetMs: -1, EndOffsetMs: Ms(1000)}, 60000, ErrInvalidTrim},
		{"end past source", 0, Trim{EndOffsetMs: Ms(70000)}, 60000, ErrInvalidTrim},
		{"start at source end", 0, Trim{StartOffsetMs: 60000}, 60000, ErrInvalidTrim},
		{"unknown source, open end", 0, Trim{}, 0, ErrInvalidTrim},
		{"negative position", -1000, Trim{EndOffsetMs: Ms(1000)}, 60000, ErrInvalidPosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClip("c", "v", tt.pos, tt.trim, tt.source)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestClipOverlaps_HalfOpen(t *testing.T) {
	a, _ := NewClip("a", "v", 0, Trim{EndOffsetMs: Ms(5000)}, 0)
	b, _ := NewClip("b", "v", 5000, Trim{EndOffsetMs: Ms(4000)}, 0)
	c, _ := NewClip("c", "v", 4999, Trim{EndOffsetMs: Ms(10)}, 0)

	assert.False(t, a.Overlaps(b), "touching intervals do not overlap")
	assert.False(t, b.Overlaps(a))
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))

	assert.True(t, a.Contains(0))
	assert.False(t, a.Contains(5000))
	assert.True(t, b.Contains(5000))
}

func TestClipClone_IsIndependent(t *testing.T) {
	c, _ := NewClip("a", "v", 0, Trim{EndOffsetMs: Ms(5000)}, 0)
	cp := c.Clone()
	*cp.EndOffsetMs = 1
	cp.LanePositionMs = 9000
	assert.Equal(t, int64(5000), *c.EndOffsetMs)
	assert.Equal(t, int64(0), c.LanePositionMs)
}
