package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	_ "github.com/lib/pq"
	"github.com/muhammadolammi/careernavigator/internal/config"
	"github.com/muhammadolammi/careernavigator/internal/content"
	"github.com/muhammadolammi/careernavigator/internal/gemini"
	"github.com/muhammadolammi/careernavigator/internal/navigator"
	"github.com/muhammadolammi/careernavigator/internal/notify"
	"github.com/muhammadolammi/careernavigator/internal/sessionstore"
	"github.com/muhammadolammi/careernavigator/internal/storage"
	"github.com/muhammadolammi/careernavigator/internal/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	// Three background workers, as the job queue consumer always ran.
	poolSize        = 3
	poolDepth       = 64
	jobTimeout      = 15 * time.Second
	shutdownTimeout = 20 * time.Second
	sweepInterval   = time.Minute
	maxUploadBytes  = 10 << 20
	cookieMaxAge    = 30 * 24 * 60 * 60
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
	}

	cnt, err := content.Load(cfg.ContentFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Collaborator calls and background jobs outlive the signal so that
	// in-flight work can finish during shutdown.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	collab, err := gemini.NewClient(baseCtx, gemini.Config{
		APIKey:    cfg.GoogleAPIKey,
		FastModel: cfg.FastModel,
		ProModel:  cfg.ProModel,
	}, logger)
	if err != nil {
		return err
	}

	draining, drain := context.WithCancel(context.Background())
	defer drain()

	srv := &ServerConfig{
		Content:   cnt,
		Logger:    logger,
		MaxUpload: maxUploadBytes,
		Draining:  draining,
	}

	var (
		saver  sessionstore.Saver
		loader Loader
		db     *sql.DB
	)
	if cfg.DBURL != "" {
		db, err = sql.Open("postgres", cfg.DBURL)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping db: %w", err)
		}
		store := sessionstore.New(db)
		saver, loader, srv.Resumes = store, store, store
		logger.Info("session persistence enabled")
	}

	var publisher sessionstore.Publisher
	if cfg.RabbitMQURL != "" {
		p, err := notify.Dial(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
		logger.Info("session updates enabled", zap.String("exchange", notify.Exchange))
	}

	if cfg.R2 != nil {
		objects, err := storage.NewR2Store(ctx, *cfg.R2)
		if err != nil {
			return err
		}
		srv.Objects = objects
		logger.Info("resume storage enabled", zap.String("bucket", cfg.R2.Bucket))
	}

	pool := worker.NewPool(poolSize, poolDepth, jobTimeout, logger)
	pool.Start(baseCtx)
	defer pool.Close()

	recorder := sessionstore.NewRecorder(pool, saver, publisher, logger)
	srv.Registry = NewRegistry(baseCtx, collab, navigator.Options{Minor: cnt.MinorDefaults()}, recorder, loader, logger)
	go srv.Registry.Sweep(baseCtx, sweepInterval)

	cookies := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	srv.Cookies = cookies

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           corsSettings(cfg.AllowedOrigins).Handler(newRouter(srv)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.RegisterOnShutdown(drain)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("navigator listening", zap.Int("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := srv.Registry.Wait(shutdownCtx); err != nil {
		logger.Warn("collaborator calls still running at shutdown", zap.Error(err))
	}
	return nil
}

func runContent(cmd *cobra.Command, args []string) error {
	cnt, err := content.Load(os.Getenv("CONTENT_FILE"))
	if err != nil {
		return err
	}
	out, err := cnt.YAML()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
