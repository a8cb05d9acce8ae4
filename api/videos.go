package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gamefilm/models"
	"gamefilm/services"
	"gamefilm/timeline"
)

type videoResponse struct {
	models.Video
	Asset timeline.VideoAsset `json:"asset"`
}

func (h *Handler) listVideos(c *gin.Context) {
	videos, err := h.Library.List(c.Request.Context(), c.Query("camera"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]videoResponse, 0, len(videos))
	for i := range videos {
		out = append(out, videoResponse{Video: videos[i], Asset: services.Asset(&videos[i])})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getVideo(c *gin.Context) {
	v, err := h.Library.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videoResponse{Video: *v, Asset: services.Asset(v)})
}

// streamVideo serves the source file. Range requests are handled by
// http.ServeContent underneath c.File.
func (h *Handler) streamVideo(c *gin.Context) {
	v, err := h.Library.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.File(v.FilePath)
}
