package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"gamefilm/metrics"
	"gamefilm/models"
	"gamefilm/reporting"
	"gamefilm/timeline"
)

var ErrVideoNotFound = errors.New("video not found")

var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".m4v": true,
}

// LibraryService indexes the footage directory and serves video metadata.
type LibraryService struct {
	FootagePath string
	DB          *gorm.DB
	Prober      Prober
	Watcher     *fsnotify.Watcher

	// SettleDelay is how long a newly created file is left alone before it
	// is probed, so cameras still uploading are not read half-written.
	SettleDelay time.Duration
}

func NewLibraryService(footagePath string, db *gorm.DB, prober Prober) *LibraryService {
	if prober == nil {
		prober = NewFFProbe()
	}
	return &LibraryService{
		FootagePath: footagePath,
		DB:          db,
		Prober:      prober,
		SettleDelay: 2 * time.Second,
	}
}

// Start runs an initial scan and then watches for new recordings.
func (s *LibraryService) Start(ctx context.Context) error {
	go s.ScanAll(ctx)

	var err error
	s.Watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	go s.watch(ctx)

	// fsnotify is not recursive, so every subdirectory is added.
	return filepath.Walk(s.FootagePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			s.watchDir(path)
		}
		return nil
	})
}

func (s *LibraryService) watchDir(path string) error {
	if err := s.Watcher.Add(path); err != nil {
		log.Printf("[LIBRARY] Cannot watch %s: %v", path, err)
		return err
	}
	return nil
}

func (s *LibraryService) Close() error {
	if s.Watcher == nil {
		return nil
	}
	return s.Watcher.Close()
}

func (s *LibraryService) watch(ctx context.Context) {
	defer reporting.Recover()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.Watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				s.watchDir(event.Name)
				continue
			}
			if !isVideoFile(event.Name) {
				continue
			}
			log.Printf("[LIBRARY] New file detected: %s", event.Name)
			go func(path string) {
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.SettleDelay):
				}
				if _, err := s.Register(ctx, path); err != nil {
					reporting.CaptureError(err, map[string]interface{}{"path": path})
				}
			}(event.Name)
		case err, ok := <-s.Watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[LIBRARY] Watcher error: %v", err)
		}
	}
}

// ScanAll registers every video under FootagePath and returns how many were
// registered successfully.
func (s *LibraryService) ScanAll(ctx context.Context) int {
	log.Printf("[LIBRARY] Starting full scan of %s", s.FootagePath)
	start := time.Now()

	var paths []string
	err := filepath.Walk(s.FootagePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isVideoFile(info.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		log.Printf("[LIBRARY] Error walking %s: %v", s.FootagePath, err)
		return 0
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		count     int
		semaphore = make(chan struct{}, 5)
	)
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		semaphore <- struct{}{}
		go func(path string) {
			defer wg.Done()
			defer func() { <-semaphore }()
			if _, err := s.Register(ctx, path); err != nil {
				log.Printf("[LIBRARY] Skipping %s: %v", path, err)
				return
			}
			mu.Lock()
			count++
			mu.Unlock()
		}(path)
	}
	wg.Wait()

	log.Printf("[LIBRARY] Scan complete in %v. Registered %d of %d videos.", time.Since(start), count, len(paths))
	return count
}

// Register probes path and records it, updating the row if the file is
// already known.
func (s *LibraryService) Register(ctx context.Context, path string) (*models.Video, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	durationMs, err := s.Prober.DurationMs(ctx, path)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	camera := cameraHint(base)

	var video models.Video
	err = s.DB.Where("file_path = ?", path).First(&video).Error
	switch {
	case gorm.IsRecordNotFoundError(err):
		video = models.Video{
			ID:         uuid.NewString(),
			FilePath:   path,
			Title:      title,
			Camera:     camera,
			DurationMs: durationMs,
			SizeBytes:  info.Size(),
			RecordedAt: info.ModTime(),
		}
		if err := s.DB.Create(&video).Error; err != nil {
			return nil, fmt.Errorf("saving video %s: %w", path, err)
		}
		metrics.RecordVideoRegistered(camera)
	case err != nil:
		return nil, err
	default:
		err := s.DB.Model(&video).Updates(map[string]interface{}{
			"duration_ms": durationMs,
			"size_bytes":  info.Size(),
			"camera":      camera,
		}).Error
		if err != nil {
			return nil, err
		}
	}
	return &video, nil
}

// Video implements VideoCatalog.
func (s *LibraryService) Video(ctx context.Context, id string) (timeline.VideoAsset, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return timeline.VideoAsset{}, err
	}
	return Asset(v), nil
}

func (s *LibraryService) Get(ctx context.Context, id string) (*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var v models.Video
	if err := s.DB.Where("id = ?", id).First(&v).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, id)
		}
		return nil, err
	}
	return &v, nil
}

// List returns videos newest first, optionally filtered by camera.
func (s *LibraryService) List(ctx context.Context, camera string) ([]models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := s.DB.Order("recorded_at desc")
	if camera != "" {
		q = q.Where("camera = ?", camera)
	}
	var videos []models.Video
	if err := q.Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

// Asset converts a stored video into what the timeline needs.
func Asset(v *models.Video) timeline.VideoAsset {
	return timeline.VideoAsset{
		ID:           v.ID,
		DurationMs:   v.DurationMs,
		URL:          "/api/videos/" + v.ID + "/stream",
		ThumbnailURL: "/api/videos/" + v.ID + "/thumbnail",
	}
}

func isVideoFile(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}

// cameraHint guesses the camera angle from the file name suffix, e.g.
// "week3_endzone.mp4" -> "End Zone". Empty when nothing matches.
func cameraHint(name string) string {
	stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	i := strings.LastIndexAny(stem, "_-")
	if i < 0 {
		return ""
	}
	return normalizeCameraName(stem[i+1:])
}

func normalizeCameraName(raw string) string {
	switch strings.ToLower(raw) {
	case "sideline", "side":
		return "Sideline"
	case "endzone", "ez":
		return "End Zone"
	case "press", "pressbox":
		return "Press Box"
	case "tight", "iso":
		return "Tight"
	case "wide", "all22":
		return "Wide"
	case "baseline":
		return "Baseline"
	case "broadcast", "tv":
		return "Broadcast"
	case "bench":
		return "Bench"
	}
	return ""
}
