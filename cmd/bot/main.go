package main

import (
	"absence-bot/internal/amqp"
	"absence-bot/internal/api"
	"absence-bot/internal/config"
	"absence-bot/internal/handler"
	"absence-bot/internal/logger"
	"absence-bot/internal/repository"
	"absence-bot/internal/scheduler"
	"absence-bot/internal/service"
	"absence-bot/pkg/telegram"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	logrus.Info("Initializing config...")
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.Environment)
	log := logger.Get()
	log.Info("Config initialized...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormLogLevel := gormlogger.Warn
	if cfg.BotDebug {
		gormLogLevel = gormlogger.Info
	}
	db, err := gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database instance:", err)
	}
	if _, err = sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		log.Warnf("Failed to enable foreign keys: %v", err)
	}

	userRepo, err := repository.NewGormUserRepository(db)
	if err != nil {
		log.WithError(err).Fatal("Failed to create user repository")
	}
	absenceRepo, err := repository.NewGormAbsenceRepository(db)
	if err != nil {
		log.WithError(err).Fatal("Failed to create absence repository")
	}
	nonWorkingDayRepo, err := repository.NewGormNonWorkingDayRepository(db)
	if err != nil {
		log.WithError(err).Fatal("Failed to create non-working day repository")
	}

	// Брокер необязателен: без AMQP_URL события не публикуются
	var publisher service.Publisher = service.NopPublisher{}
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.ConnectWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 5)
		if err != nil {
			log.Warnf("AMQP disabled: %v", err)
		} else {
			publisher = amqpClient
			log.Infof("AMQP publisher connected (exchange %s, queue %s)", cfg.AMQPExchange, cfg.AMQPQueue)
		}
	}

	userService := service.NewUserService(userRepo, absenceRepo, cfg.StoragePublicURL)
	absenceService := service.NewAbsenceService(absenceRepo, publisher)
	statsService := service.NewStatsService(absenceRepo)
	nonWorkingDayService := service.NewNonWorkingDayService(nonWorkingDayRepo)
	digestService := service.NewDigestService(absenceService, nonWorkingDayService)

	if err := userService.InitializeAdmin(cfg.BaseAdminChatID); err != nil {
		log.Warnf("Failed to initialize admin: %v", err)
	} else {
		log.Infof("Admin initialized with chat ID: %d", cfg.BaseAdminChatID)
	}

	if cfg.HolidaysFile != "" {
		if count, err := nonWorkingDayService.LoadFromJSON(cfg.HolidaysFile); err != nil {
			log.Warnf("Failed to load holidays: %v", err)
		} else {
			log.Infof("Loaded %d non-working days", count)
		}
	}

	client, err := telegram.NewClient(cfg.TelegramToken, cfg.BotDebug)
	if err != nil {
		log.Fatal("Failed to create Telegram client:", err)
	}
	log.Infof("Authorized on account %s", client.Bot.Self.UserName)

	botHandler := handler.NewHandler(client, userService, absenceService, statsService, nonWorkingDayService, cfg)

	var digest *scheduler.DigestScheduler
	if cfg.DigestCron != "" {
		digest = scheduler.NewDigestScheduler(digestService, userService, client, log, cfg.DigestCron, cfg.Location)
		if err := digest.Start(); err != nil {
			log.Fatalf("Failed to start digest scheduler: %v", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		botHandler.HandleUpdates(gctx, client.Updates())
		if gctx.Err() == nil {
			return errors.New("telegram updates channel closed")
		}
		return nil
	})

	if cfg.HTTPAddr != "" {
		router := api.NewRouter(api.NewServer(userService, absenceService, statsService, nonWorkingDayService, cfg.Location))
		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Infof("HTTP API listening on %s", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	// Остановка long polling закрывает канал обновлений
	g.Go(func() error {
		<-gctx.Done()
		client.Stop()
		return nil
	})

	log.Info("Bot started. Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil {
		log.Errorf("Bot stopped with error: %v", err)
	}

	if digest != nil {
		digest.Stop()
	}
	if amqpClient != nil {
		if err := amqpClient.Close(); err != nil {
			log.Warnf("AMQP close: %v", err)
		}
	}
	if err := sqlDB.Close(); err != nil {
		log.Warnf("Error closing database: %v", err)
	}

	log.Info("Bot stopped gracefully")
}
