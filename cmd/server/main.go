package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ridecab/service-ride/internal/application"
	"github.com/ridecab/service-ride/internal/config"
	"github.com/ridecab/service-ride/internal/domain/fleet"
	"github.com/ridecab/service-ride/internal/domain/ride"
	userDomain "github.com/ridecab/service-ride/internal/domain/user"
	rideEvents "github.com/ridecab/service-ride/internal/events"
	"github.com/ridecab/service-ride/internal/handler"
	"github.com/ridecab/service-ride/internal/platform/auth"
	"github.com/ridecab/service-ride/internal/platform/logger"
	"github.com/ridecab/service-ride/internal/platform/middleware"
	"github.com/ridecab/service-ride/internal/repository"
)

const serviceName = "service-ride"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName, zap.String("port", cfg.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]handler.HealthCheck{}

	// User store
	var userRepo userDomain.Repository
	if cfg.DBConfig.DSN != "" {
		db, err := gorm.Open(postgres.Open(cfg.DBConfig.DSN), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := db.AutoMigrate(&repository.UserModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("failed to get database handle", zap.Error(err))
		}
		defer func() { _ = sqlDB.Close() }()

		checks["postgres"] = sqlDB.PingContext
		userRepo = repository.NewGormUserRepository(db)
		log.Info("using postgres user store")
	} else {
		userRepo = repository.NewMemoryUserRepository()
		log.Info("using in-memory user store")
	}

	// Live fleet store
	var vehicles application.VehicleSource
	if cfg.FleetConfig.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.FleetConfig.RedisAddr})
		defer func() { _ = rdb.Close() }()

		store := repository.NewRedisVehicleStore(rdb)
		if err := store.Seed(ctx, application.FixtureCars()); err != nil {
			log.Warn("failed to seed vehicle store", zap.Error(err))
		}
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		vehicles = store
	}

	// Place search
	var remotePlaces application.PlaceSearcher
	if cfg.Places.GoogleAPIKey != "" {
		g, err := application.NewGooglePlaces(application.GooglePlacesConfig{
			APIKey:       cfg.Places.GoogleAPIKey,
			Center:       ride.Location{Lat: cfg.FleetConfig.CenterLat, Lng: cfg.FleetConfig.CenterLng},
			RadiusMeters: cfg.Places.RadiusMeters,
		})
		if err != nil {
			log.Fatal("failed to create places client", zap.Error(err))
		}
		remotePlaces = g
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.TTL)

	// Initialize application services
	authService := application.NewAuthService(userRepo, jwtManager, 0, log)
	if !cfg.IsProduction() {
		if err := authService.SeedDemoUser(ctx); err != nil {
			log.Error("failed to seed demo user", zap.Error(err))
		}
	}
	fleetService := application.NewFleetService(vehicles, application.FleetConfig{
		Center:       fleet.Point{Lat: cfg.FleetConfig.CenterLat, Lng: cfg.FleetConfig.CenterLng},
		RadiusMeters: cfg.FleetConfig.RadiusMeters,
		Limit:        cfg.FleetConfig.Limit,
	}, log)
	placeService := application.NewPlaceService(remotePlaces, log)
	ledger := application.NewRideLedger(log)

	// Ride event consumer
	if len(cfg.KafkaConfig.Brokers) > 0 {
		consumer := rideEvents.NewRideEventConsumer(
			cfg.KafkaConfig.Brokers,
			cfg.KafkaConfig.GroupPrefix+serviceName,
			ledger,
			log,
		)
		defer func() { _ = consumer.Close() }()

		go func() {
			log.Info("starting ride event consumer")
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("ride event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.MetricsMiddleware(serviceName))

	handler.NewHealthHandler(serviceName, checks).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register routes
	handler.NewAuthHandler(authService).RegisterRoutes(&router.RouterGroup)
	handler.NewRideHandler(fleetService, placeService).RegisterRoutes(&router.RouterGroup)
	handler.NewStatsHandler(ledger).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
