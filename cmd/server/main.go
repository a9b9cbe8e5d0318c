package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/waste-pickup-service/internal/config"
	"github.com/iliyamo/waste-pickup-service/internal/database"
	"github.com/iliyamo/waste-pickup-service/internal/handler"
	"github.com/iliyamo/waste-pickup-service/internal/middleware"
	"github.com/iliyamo/waste-pickup-service/internal/queue"
	"github.com/iliyamo/waste-pickup-service/internal/repository"
	"github.com/iliyamo/waste-pickup-service/internal/router"
	"github.com/iliyamo/waste-pickup-service/internal/service"
	"github.com/iliyamo/waste-pickup-service/pkg/logger"
	"github.com/iliyamo/waste-pickup-service/pkg/metrics"
)

func main() {
	cfg := config.Load()
	log := logger.NewLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.Fatal("failed to apply schema", "error", err)
		}
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	m := metrics.NewMetrics(prometheus.DefaultRegisterer, "waste_pickup")

	// repositories
	regionRepo := repository.NewRegionRepo(db)
	calendarRepo := repository.NewCalendarRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	profileRepo := repository.NewWasteProfileRepo(db)
	historyRepo := repository.NewLocationHistoryRepo(db)
	userRepo := repository.NewUserRepo(db)
	collectionRepo := repository.NewCollectionRepo(db)

	// services
	var publisher service.EventPublisher
	if cfg.EventsEnabled {
		publisher = queue.NewPublisher(cfg.AMQPURL, log)
	}
	calendarSvc := service.NewCalendarService(calendarRepo, regionRepo, log, m)
	coordinator := service.NewCoordinator(bookingRepo, publisher, log, m)
	profileSvc := service.NewProfileService(profileRepo, regionRepo, historyRepo, bookingRepo, coordinator, log)

	// handlers
	calendarH := handler.NewCalendarHandler(calendarSvc, log)
	profileH := handler.NewProfileHandler(profileSvc, bookingRepo, log)
	regionH := handler.NewRegionHandler(regionRepo, log)
	adminH := handler.NewAdminHandler(userRepo, profileRepo, profileSvc, collectionRepo, cfg.BcryptCost, cfg.DefaultUserPassword, log)
	collectorH := handler.NewCollectorHandler(profileRepo, collectionRepo, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log, m))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log)
	limit := middleware.NewSubmissionLimiter(config.LoadRateLimitConfig(), rdb, log)

	router.RegisterRoutes(e, db, prometheus.DefaultGatherer)
	router.RegisterLookups(e, regionH, cfg.JWTSecret, cache)
	router.RegisterCustomer(e, calendarH, profileH, cfg.JWTSecret, limit)
	router.RegisterAdmin(e, calendarH, adminH, cfg.JWTSecret, limit)
	router.RegisterCollector(e, collectorH, cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.EventsEnabled {
		go func() {
			if err := queue.StartPickupConsumer(ctx, cfg.AMQPURL, cfg.EventLogDir, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("pickup consumer stopped", "error", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
