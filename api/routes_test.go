package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamefilm/database"
	"gamefilm/models"
	"gamefilm/services"
	"gamefilm/timeline"
)

type testServer struct {
	r  *gin.Engine
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	library := services.NewLibraryService(t.TempDir(), db, nil)
	eng := timeline.NewEngine()
	n := 0
	eng.NewID = func() string {
		n++
		return fmt.Sprintf("clip-%d", n)
	}
	h := &Handler{
		Editor:       services.NewEditor(services.NewTimelineStore(db), library, eng),
		Library:      library,
		ThumbnailDir: t.TempDir(),
		Release:      "test",
	}

	r := gin.New()
	r.Use(SecurityHeadersMiddleware(), MaxBodySizeMiddleware(1<<20))
	SetupRoutes(r, h)
	return &testServer{r: r, db: db}
}

func (s *testServer) addVideo(t *testing.T, id string, durationMs int64) {
	t.Helper()
	require.NoError(t, s.db.Create(&models.Video{ID: id, FilePath: "/footage/" + id + ".mp4", DurationMs: durationMs}).Error)
}

func (s *testServer) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestTimelineNotFoundBeforeEnable(t *testing.T) {
	s := newTestServer(t)

	w := s.do("GET", "/api/games/g1/timeline", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TimelineNotFound", decode(t, w)["error"])

	w = s.do("POST", "/api/games/g1/timeline", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "g1", body["gameId"])
	assert.Equal(t, true, body["timelineModeEnabled"])
	assert.Equal(t, float64(1), body["revision"])
}

func TestClipLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.addVideo(t, "v-side", 60000)
	s.addVideo(t, "v-end", 30000)
	require.Equal(t, http.StatusOK, s.do("POST", "/api/games/g1/timeline", nil).Code)

	w := s.do("POST", "/api/games/g1/clips", gin.H{"lane": 1, "videoId": "v-side", "positionMs": 2400})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clip := decode(t, w)["clip"].(map[string]interface{})
	assert.Equal(t, "clip-1", clip["id"])
	assert.Equal(t, float64(2000), clip["lanePositionMs"])

	t.Run("overlap is rejected with the conflicting clip", func(t *testing.T) {
		w := s.do("POST", "/api/games/g1/clips", gin.H{"lane": 1, "videoId": "v-end", "positionMs": 30000})
		assert.Equal(t, http.StatusConflict, w.Code)
		body := decode(t, w)
		assert.Equal(t, "ClipOverlap", body["error"])
		assert.Equal(t, "clip-1", body["conflictingClipId"])
	})

	t.Run("pixel placement uses the zoom level", func(t *testing.T) {
		// 1000px at zoom 2 is 10s.
		w := s.do("POST", "/api/games/g1/clips", gin.H{"lane": 2, "videoId": "v-end", "positionPx": 1000, "zoomLevel": 2})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		clip := decode(t, w)["clip"].(map[string]interface{})
		assert.Equal(t, float64(10000), clip["lanePositionMs"])
	})

	t.Run("invalid zoom", func(t *testing.T) {
		w := s.do("POST", "/api/games/g1/clips", gin.H{"lane": 3, "videoId": "v-end", "positionPx": 10, "zoomLevel": 3})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "InvalidZoom", decode(t, w)["error"])
	})

	t.Run("invalid trim", func(t *testing.T) {
		w := s.do("PATCH", "/api/games/g1/clips/clip-1/trim", gin.H{"startOffsetMs": 5000, "endOffsetMs": 5000})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "InvalidTrim", decode(t, w)["error"])
	})

	t.Run("move beyond the last lane", func(t *testing.T) {
		w := s.do("PATCH", "/api/games/g1/clips/clip-1/move", gin.H{"lane": timeline.MaxLanes + 1, "positionMs": 0})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "CapacityExceeded", decode(t, w)["error"])
	})

	t.Run("unknown clip", func(t *testing.T) {
		w := s.do("DELETE", "/api/games/g1/clips/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "ClipNotFound", decode(t, w)["error"])
	})

	t.Run("unknown video", func(t *testing.T) {
		w := s.do("POST", "/api/games/g1/clips", gin.H{"lane": 3, "videoId": "v-missing", "positionMs": 0})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "VideoNotFound", decode(t, w)["error"])
	})

	t.Run("trim then resolve", func(t *testing.T) {
		w := s.do("PATCH", "/api/games/g1/clips/clip-1/trim", gin.H{"startOffsetMs": 1000, "endOffsetMs": 21000})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = s.do("GET", "/api/games/g1/resolve?lane=1&t=5000&zoom=2", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, float64(500), body["playheadPx"])
		active := body["active"].(map[string]interface{})
		assert.Equal(t, false, active["isInGap"])
		assert.Equal(t, float64(3000), active["clipTimeMs"])
		assert.Equal(t, float64(4000), active["sourceTimeMs"])

		w = s.do("GET", "/api/games/g1/resolve?t=25000", nil)
		require.Equal(t, http.StatusOK, w.Code)
		lanes := decode(t, w)["lanes"].([]interface{})
		require.Len(t, lanes, 2)
		assert.Equal(t, true, lanes[0].(map[string]interface{})["isInGap"])
		assert.Equal(t, false, lanes[1].(map[string]interface{})["isInGap"])
	})

	t.Run("preview does not commit", func(t *testing.T) {
		w := s.do("POST", "/api/games/g1/clips/clip-1/preview", gin.H{"kind": "move", "lane": 2, "positionMs": 12000})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, "ClipOverlap", body["error"])
		assert.Equal(t, false, body["preview"].(map[string]interface{})["valid"])

		w = s.do("GET", "/api/games/g1/timeline", nil)
		lanes := decode(t, w)["lanes"].([]interface{})
		assert.Len(t, lanes[0].(map[string]interface{})["clips"], 1)
	})

	t.Run("bad resolve time", func(t *testing.T) {
		w := s.do("GET", "/api/games/g1/resolve?t=soon", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestLaneManagement(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do("POST", "/api/games/g1/timeline", nil).Code)

	for i := 1; i <= timeline.MaxLanes; i++ {
		w := s.do("POST", "/api/games/g1/lanes", gin.H{"label": ""})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, float64(i), decode(t, w)["lane"])
	}
	w := s.do("POST", "/api/games/g1/lanes", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "CapacityExceeded", decode(t, w)["error"])

	w = s.do("PATCH", "/api/games/g1/lanes/2", gin.H{"label": "End Zone", "syncOffsetMs": 1500})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tl := decode(t, w)["timeline"].(map[string]interface{})
	lane2 := tl["lanes"].([]interface{})[1].(map[string]interface{})
	assert.Equal(t, "End Zone", lane2["label"])
	assert.Equal(t, float64(1500), lane2["syncOffsetMs"])

	w = s.do("PATCH", "/api/games/g1/lanes/9", gin.H{"label": "Nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResumePosition(t *testing.T) {
	s := newTestServer(t)

	w := s.do("GET", "/api/games/g1/resume", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do("PUT", "/api/games/g1/resume", gin.H{"videoId": "v-side", "positionMs": 521000}, ViewerHeader, "coach")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "8:41", decode(t, w)["label"])

	w = s.do("GET", "/api/games/g1/resume?videoId=v-side&positionMs=0", nil, ViewerHeader, "coach")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["offerResume"])

	w = s.do("GET", "/api/games/g1/resume?videoId=v-side&positionMs=519000", nil, ViewerHeader, "coach")
	assert.Equal(t, false, decode(t, w)["offerResume"])

	w = s.do("GET", "/api/games/g1/resume", nil, ViewerHeader, "someone-else")
	body = decode(t, w)
	assert.Nil(t, body["position"])
	assert.Equal(t, false, body["offerResume"])
}

func TestResetTimeline(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do("POST", "/api/games/g1/timeline", nil).Code)

	w := s.do("DELETE", "/api/games/g1/timeline", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do("GET", "/api/games/g1/timeline", nil).Code)
}

func TestStaticLookups(t *testing.T) {
	s := newTestServer(t)

	body := decode(t, s.do("GET", "/api/zoom-levels", nil))
	assert.Equal(t, []interface{}{float64(1), float64(2), float64(4), float64(8), float64(16)}, body["levels"])
	assert.Equal(t, float64(timeline.BasePixelsPerSecond), body["basePixelsPerSecond"])

	body = decode(t, s.do("GET", "/api/lane-labels", nil))
	assert.Equal(t, float64(timeline.MaxLanes), body["maxLanes"])
	assert.Contains(t, body["suggestions"], "Sideline")
}
