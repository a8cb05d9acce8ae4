package api

import (
	"bufio"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

type Release struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Notes   string `json:"notes"`
}

type VersionResponse struct {
	Running  string    `json:"running"`
	Latest   string    `json:"latest"`
	Releases []Release `json:"releases"`
}

// ## [0.3.0] - 2026-09-14
var releaseHeader = regexp.MustCompile(`^## \[(\d+\.\d+\.\d+)\] - (\d{4}-\d{2}-\d{2})`)

var changelogPaths = []string{"/app/CHANGELOG.md", "CHANGELOG.md"}

func parseChangelog(content string) []Release {
	var (
		releases []Release
		notes    []string
	)
	flush := func() {
		if len(releases) > 0 {
			releases[len(releases)-1].Notes = strings.TrimSpace(strings.Join(notes, "\n"))
		}
		notes = notes[:0]
	}

	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := sc.Text()
		if m := releaseHeader.FindStringSubmatch(line); m != nil {
			flush()
			releases = append(releases, Release{Version: m[1], Date: m[2]})
			continue
		}
		if len(releases) > 0 {
			notes = append(notes, line)
		}
	}
	flush()
	return releases
}

func (h *Handler) getVersion(c *gin.Context) {
	resp := VersionResponse{Running: h.Release, Latest: "v0.0.0", Releases: []Release{}}
	for _, p := range changelogPaths {
		content, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if releases := parseChangelog(string(content)); len(releases) > 0 {
			resp.Releases = releases
			resp.Latest = "v" + releases[0].Version
		}
		break
	}
	c.JSON(http.StatusOK, resp)
}
