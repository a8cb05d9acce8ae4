package api

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
)

// getThumbnail grabs one frame of a video with ffmpeg and caches it on disk.
// time is in seconds from the start of the source file.
func (h *Handler) getThumbnail(c *gin.Context) {
	seekTime := c.DefaultQuery("time", "0.1")
	widthStr := c.DefaultQuery("w", "480")

	// Strict float check so nothing but a number reaches ffmpeg.
	seek, err := strconv.ParseFloat(seekTime, 64)
	if err != nil || seek < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time parameter"})
		return
	}

	width, err := strconv.Atoi(widthStr)
	if err != nil || width < 10 || width > 1920 {
		width = 480
	}

	video, err := h.Library.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := os.Stat(video.FilePath); os.IsNotExist(err) {
		log.Printf("[THUMB] Source not found: %s", video.FilePath)
		c.JSON(http.StatusNotFound, gin.H{"error": "Video file not found"})
		return
	}

	if err := os.MkdirAll(h.ThumbnailDir, 0755); err != nil {
		log.Printf("[THUMB] Failed to create thumbnail dir: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	// Keyed on video, offset and width; the file path alone is not enough
	// once a recording is replaced under the same id.
	cacheKey := fmt.Sprintf("%s|%s|%.3f|%d", video.ID, video.FilePath, seek, width)
	hash := md5.Sum([]byte(cacheKey))
	thumbPath := filepath.Join(h.ThumbnailDir, hex.EncodeToString(hash[:])+".jpg")

	if info, err := os.Stat(thumbPath); err == nil {
		if info.Size() > 0 {
			c.File(thumbPath)
			return
		}
		os.Remove(thumbPath)
	}

	vf := fmt.Sprintf("scale=%d:-1", width)
	cmd := exec.CommandContext(c.Request.Context(), "ffmpeg",
		"-y", "-ss", strconv.FormatFloat(seek, 'f', 3, 64),
		"-i", video.FilePath,
		"-vframes", "1", "-vf", vf, "-q:v", "5",
		thumbPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Printf("[THUMB] ffmpeg failed for %s: %v, output: %s", video.ID, err, string(out))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate thumbnail"})
		return
	}

	c.File(thumbPath)
}
