package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"io.winapps.depttimeline/internal/admin"
	"io.winapps.depttimeline/internal/config"
	"io.winapps.depttimeline/internal/db"
	firebaseutil "io.winapps.depttimeline/internal/firebase"
	"io.winapps.depttimeline/internal/handlers"
	"io.winapps.depttimeline/internal/logging"
	"io.winapps.depttimeline/internal/middleware"
	"io.winapps.depttimeline/internal/report"
	"io.winapps.depttimeline/internal/scheduler"
	"io.winapps.depttimeline/internal/store"
	"io.winapps.depttimeline/internal/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	backend := cfg.ResolvedBackend()

	// Redis is optional: it backs the redis local driver and report job status
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = db.InitRedis(cfg.Redis)
		if err != nil {
			logger.Fatalw("Failed to initialize Redis", "error", err)
		}
		defer redisClient.Close()
	}

	var firebaseApp *firebase.App
	if cfg.Firebase.Configured() {
		firebaseApp, err = firebaseutil.InitFirebase(ctx, cfg.Firebase)
		if err != nil {
			logger.Fatalw("Failed to initialize Firebase", "error", err)
		}
	}

	var entryStore store.Store
	switch backend {
	case config.BackendFirestore:
		client, err := firebaseutil.GetFirestoreClient(ctx, firebaseApp)
		if err != nil {
			logger.Fatalw("Failed to initialize Firestore", "error", err)
		}
		defer client.Close()
		entryStore = store.NewFirestoreStore(client)
	case config.BackendPostgres:
		pool, err := db.InitPostgres(cfg.Postgres)
		if err != nil {
			logger.Fatalw("Failed to initialize PostgreSQL", "error", err)
		}
		defer pool.Close()
		entryStore = store.NewPostgresStore(pool)
	default:
		kv, err := newLocalKV(cfg, redisClient)
		if err != nil {
			logger.Fatalw("Failed to initialize local store", "driver", cfg.LocalDriver, "error", err)
		}
		entryStore = store.NewLocalStore(kv)
	}
	entryStore = store.WithLatency(entryStore, cfg.StoreLatency)

	// Durable uploads need Firebase Storage; everything else gets
	// process-lifetime blobs
	var uploader upload.Uploader
	var blobs *upload.MemoryUploader
	if firebaseApp != nil && backend != config.BackendLocal {
		bucket, bucketName, err := firebaseutil.GetDefaultBucket(ctx, firebaseApp)
		if err != nil {
			logger.Fatalw("Failed to initialize Firebase Storage", "error", err)
		}
		uploader = upload.NewStorageUploader(bucket, bucketName)
	} else {
		blobs = upload.NewMemoryUploader()
		uploader = blobs
	}
	uploader = upload.WithLatency(uploader, cfg.UploadLatency)

	assets := report.Assets{report.DirAssets{Root: cfg.Report.AssetsDir}}
	if blobs != nil {
		assets = append(assets, blobs)
	}
	images := report.NewHTTPImageSource(assets, logger,
		report.WithProxyURL(cfg.Report.ImageProxyURL),
		report.WithHTTPClient(&http.Client{Timeout: cfg.Report.FetchTimeout}),
	)
	generator := report.NewGenerator(images, assets, cfg.Report.LetterheadPath, logger)

	var jobs report.JobStore = report.NewMemoryJobStore(cfg.Report.TTL)
	if redisClient != nil {
		jobs = report.NewRedisJobStore(redisClient, cfg.Report.TTL)
	}
	runner := report.NewRunner(generator, jobs, cfg.Report.OutputDir, logger)

	sessions := admin.NewSessions(cfg.Admin.PIN, cfg.Admin.MaxAttempts)

	sched := scheduler.New(logger)
	mustSchedule(logger, sched.Add("report-cleanup", "@every 1h", func(ctx context.Context) (int, error) {
		return runner.Cleanup(ctx, cfg.Report.TTL)
	}))
	mustSchedule(logger, sched.Add("admin-sessions", "@every 10m", func(ctx context.Context) (int, error) {
		return sessions.Purge(cfg.Admin.SessionTTL), nil
	}))
	if blobs != nil {
		mustSchedule(logger, sched.Add("upload-blobs", "@every 5m", func(ctx context.Context) (int, error) {
			return blobs.Purge(cfg.UploadTTL), nil
		}))
	}
	sched.Start()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogging(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.PublicOrigin),
	)

	handlers.RegisterRoutes(router, handlers.Handlers{
		Entries:  handlers.NewEntryHandler(entryStore, cfg.PublicOrigin, logger),
		Uploads:  handlers.NewUploadHandler(uploader, blobs, logger),
		Admin:    handlers.NewAdminHandler(sessions, logger),
		Reports:  handlers.NewReportHandler(entryStore, runner, logger),
		Sessions: sessions,
		Backend:  backend,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Infow("Server starting", "port", cfg.Port, "backend", backend, "ephemeral_uploads", uploader.Ephemeral())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Server forced to shutdown", "error", err)
	}
	sched.Stop(shutdownCtx)
	waitForReports(shutdownCtx, runner, logger)

	logger.Info("Server exited")
}

func newLocalKV(cfg *config.Config, redisClient *redis.Client) (store.KV, error) {
	switch cfg.LocalDriver {
	case config.LocalDriverRedis:
		return store.NewRedisKV(redisClient), nil
	case config.LocalDriverMemory:
		return store.NewMemoryKV(), nil
	default:
		return store.NewFileKV(cfg.LocalPath)
	}
}

func mustSchedule(logger *zap.SugaredLogger, err error) {
	if err != nil {
		logger.Fatalw("Failed to schedule cleanup job", "error", err)
	}
}

func waitForReports(ctx context.Context, runner *report.Runner, logger *zap.SugaredLogger) {
	done := make(chan struct{})
	go func() {
		runner.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("Report jobs still running at shutdown")
	}
}
