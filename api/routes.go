package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gamefilm/metrics"
	"gamefilm/services"
	"gamefilm/timeline"
)

// ViewerHeader carries the viewer id set by the upstream auth gateway.
const ViewerHeader = "X-Viewer-ID"

type Handler struct {
	Editor       *services.Editor
	Library      *services.LibraryService
	ThumbnailDir string
	Release      string
}

func SetupRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/version", h.getVersion)
		api.GET("/lane-labels", getLaneLabels)
		api.GET("/zoom-levels", getZoomLevels)

		games := api.Group("/games/:gameId")
		games.GET("/timeline", h.getTimeline)
		games.POST("/timeline", h.enableTimeline)
		games.DELETE("/timeline", h.resetTimeline)
		games.POST("/flush", h.flushTimeline)

		games.POST("/lanes", h.addLane)
		games.PATCH("/lanes/:lane", h.updateLane)

		games.POST("/clips", h.placeClip)
		games.PATCH("/clips/:clipId/move", h.moveClip)
		games.PATCH("/clips/:clipId/trim", h.trimClip)
		games.DELETE("/clips/:clipId", h.removeClip)
		games.POST("/clips/:clipId/preview", h.previewClip)

		games.GET("/resolve", h.resolve)
		games.GET("/resume", h.getResume)
		games.PUT("/resume", h.putResume)

		videos := api.Group("/videos")
		videos.Use(CORSMiddleware())
		videos.GET("", h.listVideos)
		videos.GET("/:id", h.getVideo)
		videos.GET("/:id/stream", h.streamVideo)
		videos.GET("/:id/thumbnail", h.getThumbnail)
	}

	if metrics.IsEnabled() {
		r.GET("/metrics", func(c *gin.Context) {
			c.Header("Content-Type", "text/plain; version=0.0.4")
			metrics.WritePrometheus(c.Writer)
		})
	}
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

func getLaneLabels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"suggestions": timeline.LabelSuggestions,
		"maxLanes":    timeline.MaxLanes,
	})
}

func getZoomLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"levels":              timeline.ZoomLevels,
		"default":             timeline.DefaultZoom,
		"basePixelsPerSecond": timeline.BasePixelsPerSecond,
	})
}

// position accepts either a time in ms or a pixel offset at a zoom level.
type position struct {
	PositionMs *int64   `json:"positionMs"`
	PositionPx *float64 `json:"positionPx"`
	ZoomLevel  int      `json:"zoomLevel"`
}

func (p position) ms() (int64, error) {
	if p.PositionMs != nil {
		return *p.PositionMs, nil
	}
	if p.PositionPx == nil {
		return 0, fmt.Errorf("%w: positionMs or positionPx is required", timeline.ErrInvalidPosition)
	}
	z := timeline.DefaultZoom
	if p.ZoomLevel != 0 {
		var err error
		if z, err = timeline.ParseZoom(p.ZoomLevel); err != nil {
			return 0, err
		}
	}
	return timeline.PixelsToTime(*p.PositionPx, z), nil
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return false
	}
	return true
}

func (h *Handler) getTimeline(c *gin.Context) {
	view, err := h.Editor.Timeline(c.Request.Context(), c.Param("gameId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) enableTimeline(c *gin.Context) {
	view, err := h.Editor.Enable(c.Request.Context(), c.Param("gameId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) resetTimeline(c *gin.Context) {
	if err := h.Editor.Reset(c.Request.Context(), c.Param("gameId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) flushTimeline(c *gin.Context) {
	view, err := h.Editor.Flush(c.Request.Context(), c.Param("gameId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) addLane(c *gin.Context) {
	var req struct {
		Label string `json:"label"`
	}
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	res, err := h.Editor.AddLane(c.Request.Context(), c.Param("gameId"), req.Label)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) updateLane(c *gin.Context) {
	lane, err := strconv.Atoi(c.Param("lane"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: lane %q", timeline.ErrInvalidLane, c.Param("lane")))
		return
	}
	var req struct {
		Label        *string `json:"label"`
		SyncOffsetMs *int64  `json:"syncOffsetMs"`
	}
	if !bind(c, &req) {
		return
	}

	ctx, gameID := c.Request.Context(), c.Param("gameId")
	res, err := h.Editor.UpdateLane(ctx, gameID, lane, req.Label, req.SyncOffsetMs)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.Editor.Timeline(ctx, gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	res.Lane = lane
	c.JSON(http.StatusOK, gin.H{"result": res, "timeline": view})
}

func (h *Handler) placeClip(c *gin.Context) {
	var req struct {
		position
		Lane          int    `json:"lane"`
		VideoID       string `json:"videoId" binding:"required"`
		StartOffsetMs int64  `json:"startOffsetMs"`
		EndOffsetMs   *int64 `json:"endOffsetMs"`
	}
	if !bind(c, &req) {
		return
	}
	pos, err := req.ms()
	if err != nil {
		respondError(c, err)
		return
	}
	var trim *timeline.Trim
	if req.StartOffsetMs != 0 || req.EndOffsetMs != nil {
		trim = &timeline.Trim{StartOffsetMs: req.StartOffsetMs, EndOffsetMs: req.EndOffsetMs}
	}

	res, err := h.Editor.PlaceClip(c.Request.Context(), c.Param("gameId"), req.Lane, req.VideoID, pos, trim)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type moveRequest struct {
	position
	Lane int `json:"lane"`
}

func (h *Handler) moveClip(c *gin.Context) {
	var req moveRequest
	if !bind(c, &req) {
		return
	}
	pos, err := req.ms()
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.Editor.MoveClip(c.Request.Context(), c.Param("gameId"), c.Param("clipId"), req.Lane, pos)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type trimRequest struct {
	StartOffsetMs int64  `json:"startOffsetMs"`
	EndOffsetMs   *int64 `json:"endOffsetMs"`
}

func (h *Handler) trimClip(c *gin.Context) {
	var req trimRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Editor.TrimClip(c.Request.Context(), c.Param("gameId"), c.Param("clipId"), req.StartOffsetMs, req.EndOffsetMs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) removeClip(c *gin.Context) {
	res, err := h.Editor.RemoveClip(c.Request.Context(), c.Param("gameId"), c.Param("clipId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// previewClip projects a drag ("move") or resize ("trim") without committing it.
func (h *Handler) previewClip(c *gin.Context) {
	var req struct {
		Kind string `json:"kind" binding:"required,oneof=move trim"`
		moveRequest
		trimRequest
	}
	if !bind(c, &req) {
		return
	}

	ctx, gameID, clipID := c.Request.Context(), c.Param("gameId"), c.Param("clipId")
	var (
		p   timeline.Preview
		err error
	)
	if req.Kind == "move" {
		pos, perr := req.ms()
		if perr != nil {
			respondError(c, perr)
			return
		}
		p, err = h.Editor.PreviewMove(ctx, gameID, clipID, req.Lane, pos)
	} else {
		p, err = h.Editor.PreviewTrim(ctx, gameID, clipID, req.StartOffsetMs, req.EndOffsetMs)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	body := gin.H{"preview": p}
	if !p.Valid {
		body["error"] = errorCode(p.Err)
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) resolve(c *gin.Context) {
	t, err := strconv.ParseInt(c.Query("t"), 10, 64)
	if err != nil || t < 0 {
		respondError(c, fmt.Errorf("%w: t must be a non-negative time in ms", timeline.ErrInvalidPosition))
		return
	}
	ctx, gameID := c.Request.Context(), c.Param("gameId")
	body := gin.H{"gameTimeMs": t}

	if zs := c.Query("zoom"); zs != "" {
		zv, err := strconv.Atoi(zs)
		if err != nil {
			respondError(c, fmt.Errorf("%w: %q", timeline.ErrInvalidZoom, zs))
			return
		}
		z, err := timeline.ParseZoom(zv)
		if err != nil {
			respondError(c, err)
			return
		}
		body["playheadPx"] = timeline.TimeToPixels(t, z)
	}

	if ls := c.Query("lane"); ls != "" {
		lane, err := strconv.Atoi(ls)
		if err != nil {
			respondError(c, fmt.Errorf("%w: lane %q", timeline.ErrInvalidLane, ls))
			return
		}
		info, err := h.Editor.Resolve(ctx, gameID, lane, t)
		if err != nil {
			respondError(c, err)
			return
		}
		body["active"] = info
		c.JSON(http.StatusOK, body)
		return
	}

	infos, err := h.Editor.ResolveAll(ctx, gameID, t)
	if err != nil {
		respondError(c, err)
		return
	}
	body["lanes"] = infos
	c.JSON(http.StatusOK, body)
}

func viewerID(c *gin.Context) (string, bool) {
	id := c.GetHeader(ViewerHeader)
	if id == "" {
		respondError(c, fmt.Errorf("%w: missing %s header", errBadRequest, ViewerHeader))
		return "", false
	}
	return id, true
}

func (h *Handler) getResume(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}
	current, _ := strconv.ParseInt(c.Query("positionMs"), 10, 64)
	pos, offer, err := h.Editor.Resume(c.Request.Context(), c.Param("gameId"), viewer, c.Query("videoId"), current)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"position": pos, "offerResume": offer})
}

func (h *Handler) putResume(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}
	var req struct {
		VideoID    string `json:"videoId" binding:"required"`
		PositionMs int64  `json:"positionMs"`
		Label      string `json:"label"`
	}
	if !bind(c, &req) {
		return
	}
	pos, err := h.Editor.SaveResume(c.Request.Context(), timeline.ResumePosition{
		GameID:     c.Param("gameId"),
		ViewerID:   viewer,
		VideoID:    req.VideoID,
		PositionMs: req.PositionMs,
		Label:      req.Label,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pos)
}
