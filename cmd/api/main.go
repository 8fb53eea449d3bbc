package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/fellowship-hq/fellowship-api/internal/config"
	"github.com/fellowship-hq/fellowship-api/internal/database"
	"github.com/fellowship-hq/fellowship-api/internal/handler"
	"github.com/fellowship-hq/fellowship-api/internal/middleware"
	"github.com/fellowship-hq/fellowship-api/internal/models"
	"github.com/fellowship-hq/fellowship-api/internal/repository"
	"github.com/fellowship-hq/fellowship-api/internal/router"
	"github.com/fellowship-hq/fellowship-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Member{},
		&models.Tag{},
		&models.MemberTag{},
		&models.Event{},
		&models.Attendance{},
		&models.GuestAttendance{},
		&models.ProfileEditRequest{},
		&models.Region{},
		&models.MinistryTeam{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NatsURL != "" {
		natsConn, err = nats.Connect(cfg.NatsURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	memberRepo := repository.NewMemberRepository(db)
	tagRepo := repository.NewTagRepository(db)
	eventRepo := repository.NewEventRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	editRequestRepo := repository.NewEditRequestRepository(db)
	regionRepo := repository.NewRegionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	dispatcher := service.NewNotificationDispatcher(notificationRepo, redisClient, cfg.NotificationChannel, natsConn, service.NewLogDelivery(logger), validate, logger)
	tagService := service.NewTagService(tagRepo, validate, logger)
	checkinService := service.NewCheckinService(memberRepo, eventRepo, attendanceRepo, tagService, dispatcher, validate, logger)
	editRequestService := service.NewEditRequestService(editRequestRepo, memberRepo, regionRepo, dispatcher, validate, logger)
	leadershipService := service.NewLeadershipService(regionRepo, memberRepo, tagRepo, dispatcher, redisClient, cfg.StructureCacheTTL, validate, logger)
	memberService := service.NewMemberService(memberRepo, notificationRepo, validate, logger)

	checkinHandler := handler.NewCheckinHandler(checkinService, logger)
	memberHandler := handler.NewMemberHandler(memberService, tagService, logger)
	editRequestHandler := handler.NewEditRequestHandler(editRequestService, logger)
	leadershipHandler := handler.NewLeadershipHandler(leadershipService, logger)
	tagHandler := handler.NewTagHandler(tagService, logger)

	dispatcherCtx, cancelDispatcher := context.WithCancel(context.Background())
	defer cancelDispatcher()
	dispatcher.Start(dispatcherCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CheckinHandler:     checkinHandler,
		MemberHandler:      memberHandler,
		EditRequestHandler: editRequestHandler,
		LeadershipHandler:  leadershipHandler,
		TagHandler:         tagHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
		CheckinRateLimiter: middleware.RateLimit("checkin", cfg.CheckinRateLimit, cfg.CheckinRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
