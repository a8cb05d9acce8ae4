package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"gamefilm/api"
	"gamefilm/database"
	"gamefilm/metrics"
	"gamefilm/reporting"
	"gamefilm/services"
)

func NewServeCmd(deps *Dependencies) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and footage watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			if port != "" {
				cfg.Port = port
			}

			if err := reporting.Init(cfg.SentryDSN, cfg.SentryEnvironment, cfg.Release); err != nil {
				log.Printf("[SERVE] %v", err)
			}
			defer reporting.Flush()
			metrics.Init(cfg.MetricsEnabled)

			if err := database.InitDB(cfg.DBDriver, cfg.DBDSN, cfg.DataPath); err != nil {
				return err
			}
			defer database.CloseDB()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			library := services.NewLibraryService(cfg.FootagePath, database.DB, nil)
			if cfg.Watch {
				if err := library.Start(ctx); err != nil {
					log.Printf("[SERVE] Footage watcher not running: %v", err)
				}
				defer library.Close()
			} else {
				go library.ScanAll(ctx)
			}

			h := &api.Handler{
				Editor:       deps.newEditor(database.DB, library),
				Library:      library,
				ThumbnailDir: filepath.Join(cfg.DataPath, "thumbnails"),
				Release:      cfg.Release,
			}

			r := gin.New()
			r.Use(gin.Recovery(), api.RequestLogger(), api.MetricsMiddleware(), api.SecurityHeadersMiddleware(), api.MaxBodySizeMiddleware(cfg.MaxBodyBytes))
			// Trust no proxies so ClientIP in the request log is the real peer.
			if err := r.SetTrustedProxies(nil); err != nil {
				log.Printf("[SERVE] Failed to set trusted proxies: %v", err)
			}
			api.SetupRoutes(r, h)
			r.NoRoute(func(c *gin.Context) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
			})

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				log.Printf("[SERVE] Listening on %s", srv.Addr)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Printf("[SERVE] Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides config)")
	return cmd
}
