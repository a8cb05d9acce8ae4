package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"gamefilm/reporting"
	"gamefilm/services"
	"gamefilm/timeline"
)

var errBadRequest = errors.New("bad request")

// errorCode names a known error for clients. Empty for unexpected errors.
func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, timeline.ErrCapacityExceeded):
		return "CapacityExceeded"
	case errors.Is(err, timeline.ErrClipOverlap):
		return "ClipOverlap"
	case errors.Is(err, timeline.ErrClipNotFound):
		return "ClipNotFound"
	case errors.Is(err, timeline.ErrInvalidTrim):
		return "InvalidTrim"
	case errors.Is(err, timeline.ErrInvalidLane):
		return "InvalidLane"
	case errors.Is(err, timeline.ErrInvalidZoom):
		return "InvalidZoom"
	case errors.Is(err, timeline.ErrInvalidPosition):
		return "InvalidPosition"
	case errors.Is(err, timeline.ErrLaneNotFound):
		return "LaneNotFound"
	case errors.Is(err, services.ErrRevisionConflict):
		return "RevisionConflict"
	case errors.Is(err, services.ErrUnsaved):
		return "UnsavedChanges"
	case errors.Is(err, services.ErrTimelineNotFound):
		return "TimelineNotFound"
	case errors.Is(err, services.ErrVideoNotFound):
		return "VideoNotFound"
	case errors.Is(err, errBadRequest):
		return "BadRequest"
	}
	return ""
}

// fixedMessages replace the error text for codes whose errors carry storage
// details.
var fixedMessages = map[string]string{
	"UnsavedChanges":   "timeline changes could not be saved, retry or flush",
	"RevisionConflict": "timeline was changed by another editor, reload and retry",
}

func statusFor(code string) int {
	switch code {
	case "CapacityExceeded", "InvalidTrim", "InvalidLane", "InvalidZoom", "InvalidPosition":
		return http.StatusUnprocessableEntity
	case "ClipOverlap", "RevisionConflict":
		return http.StatusConflict
	case "ClipNotFound", "LaneNotFound", "TimelineNotFound", "VideoNotFound":
		return http.StatusNotFound
	case "UnsavedChanges":
		return http.StatusServiceUnavailable
	case "BadRequest":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Unexpected errors are logged and reported
// but never echoed to the client.
func respondError(c *gin.Context, err error) {
	code := errorCode(err)
	if code == "" {
		log.Printf("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
		reporting.CaptureError(err, map[string]interface{}{
			"method": c.Request.Method,
			"route":  c.FullPath(),
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	message := err.Error()
	if fixed, ok := fixedMessages[code]; ok {
		log.Printf("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
		if code == "UnsavedChanges" {
			reporting.CaptureError(err, map[string]interface{}{
				"method": c.Request.Method,
				"route":  c.FullPath(),
			})
		}
		message = fixed
	}

	body := gin.H{"error": code, "message": message}
	var overlap *timeline.OverlapError
	if errors.As(err, &overlap) {
		body["lane"] = overlap.Lane
		body["conflictingClipId"] = overlap.Conflict
	}
	c.AbortWithStatusJSON(statusFor(code), body)
}
