package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gymkiosk/internal/attendance"
	"gymkiosk/internal/auth"
	"gymkiosk/internal/config"
	"gymkiosk/internal/handler"
	"gymkiosk/internal/httpmiddleware"
	"gymkiosk/internal/identity"
	"gymkiosk/internal/lock"
	"gymkiosk/internal/logging"
	"gymkiosk/internal/membership"
	"gymkiosk/internal/metrics"
	"gymkiosk/internal/photos"
	"gymkiosk/internal/scan"
	"gymkiosk/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.Production())
	ctx := context.Background()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err := store.NewDB(dialCtx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer func() { _ = db.Close() }()
	if err := db.Migrate(dialCtx); err != nil {
		return err
	}

	health := map[string]handler.HealthCheck{"db": db.Healthy}

	var locker lock.Locker
	if cfg.LockBackend == "memory" {
		locker = lock.NewMemory()
	} else {
		redisClient, err := store.NewRedis(cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		locker = lock.NewRedis(redisClient.Client, "kiosk:lock:", 10*time.Second)
		health["redis"] = redisClient.Healthy
	}

	photoStore, err := newPhotoStore(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info(ctx, "photo store configured", "backend", cfg.PhotoBackend)

	m := metrics.New(nil)

	memberships := membership.NewService(membership.NewRepository(db.Client), cfg.GymLocation)
	ledger := attendance.NewLedger(attendance.NewRepository(db.Client), attendance.NewClock(loc))
	orchestrator := scan.NewOrchestrator(memberships, ledger, scan.Options{
		Photos:   photoStore,
		Locker:   locker,
		Location: loc,
		Logger:   logger.With("component", "scan"),
		Metrics:  m,
	})
	enroller := identity.NewService(identity.NewRepository(db.Client), photoStore, cfg.MemberEmailDomain, logger.With("component", "identity"), m)

	h := &handler.Handler{
		Scanner:     orchestrator,
		Memberships: memberships,
		Enroller:    enroller,
		Admin: auth.Admin{
			Email:        cfg.AdminEmail,
			Password:     cfg.AdminPassword,
			PasswordHash: cfg.AdminPasswordHash,
		},
		SessionKey:     cfg.SessionSecret,
		SessionTTL:     cfg.SessionTTL,
		SecureCookies:  cfg.Production(),
		WebDir:         cfg.WebDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Health:         health,
		Log:            logger.With("component", "http"),
	}
	if reader, ok := photoStore.(photos.Reader); ok {
		h.Photos = reader
	}
	if !h.Admin.Configured() {
		logger.Warn(ctx, "ADMIN_EMAIL and ADMIN_PASSWORD are not set; nobody can log in")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.NewClientLimiter(cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info(ctx, "starting server", "port", cfg.HTTPPort, "time_zone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server forced shutdown", "err", err)
	}

	logger.Info(ctx, "server exited")
	return nil
}

func newPhotoStore(ctx context.Context, cfg config.App) (photos.Store, error) {
	switch cfg.PhotoBackend {
	case "s3":
		return photos.NewS3(ctx, photos.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3BaseEndpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			URLTTL:    cfg.PhotoURLTTL,
		})
	case "cloudinary":
		if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
			return nil, errors.New("cloudinary backend needs CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
		}
		return photos.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder), nil
	case "memory", "":
		return photos.NewMemory("/photos/"), nil
	default:
		return nil, fmt.Errorf("unknown PHOTO_BACKEND %q", cfg.PhotoBackend)
	}
}
