package services

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Prober reads media metadata from a file.
type Prober interface {
	DurationMs(ctx context.Context, path string) (int64, error)
}

// FFProbe shells out to ffprobe.
type FFProbe struct {
	Binary  string
	Timeout time.Duration
}

func NewFFProbe() *FFProbe {
	return &FFProbe{Binary: "ffprobe", Timeout: 30 * time.Second}
}

func (p *FFProbe) DurationMs(ctx context.Context, path string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	// "--" keeps a path starting with "-" from being read as a flag.
	cmd := exec.CommandContext(ctx, p.Binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"--", path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbeDuration(string(out))
}

// parseProbeDuration converts ffprobe's seconds output ("63.480000") to ms.
func parseProbeDuration(out string) (int64, error) {
	s := strings.TrimSpace(out)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("no duration reported")
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad duration %q: %w", s, err)
	}
	if secs <= 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("bad duration %q", s)
	}
	return int64(math.Round(secs * 1000)), nil
}
