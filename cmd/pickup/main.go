package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/pickup/internal/common/clock"
	"github.com/KirkDiggler/pickup/internal/common/logging"
	"github.com/KirkDiggler/pickup/internal/common/telemetry"
	"github.com/KirkDiggler/pickup/internal/common/uuid"
	"github.com/KirkDiggler/pickup/internal/config"
	"github.com/KirkDiggler/pickup/internal/dispatch"
	"github.com/KirkDiggler/pickup/internal/events"
	"github.com/KirkDiggler/pickup/internal/handlers/api"
	"github.com/KirkDiggler/pickup/internal/handlers/discord"
	bookingRepo "github.com/KirkDiggler/pickup/internal/repositories/booking"
	friendRepo "github.com/KirkDiggler/pickup/internal/repositories/friend"
	notificationRepo "github.com/KirkDiggler/pickup/internal/repositories/notification"
	sessionRepo "github.com/KirkDiggler/pickup/internal/repositories/session"
	"github.com/KirkDiggler/pickup/internal/services/booking"
	"github.com/KirkDiggler/pickup/internal/services/calendar"
	"github.com/KirkDiggler/pickup/internal/services/directory"
	"github.com/KirkDiggler/pickup/internal/services/links"
	"github.com/KirkDiggler/pickup/internal/services/messaging"
	"github.com/KirkDiggler/pickup/internal/services/notify"
	"github.com/KirkDiggler/pickup/internal/services/scheduler"
	"github.com/KirkDiggler/pickup/internal/services/sessions"
	"github.com/KirkDiggler/pickup/internal/worker"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "pickup"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pickup: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logger, err := logging.New(&logging.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, &telemetry.Config{
		ServiceName: serviceName,
		Environment: cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	weekday, err := cfg.Weekday()
	if err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// Repositories
	sessionStore, err := sessionRepo.NewRedis(&sessionRepo.Config{RedisClient: redisClient})
	if err != nil {
		return fmt.Errorf("failed to create session repository: %w", err)
	}
	friendStore, err := friendRepo.NewRedis(&friendRepo.Config{RedisClient: redisClient})
	if err != nil {
		return fmt.Errorf("failed to create friend repository: %w", err)
	}
	bookingStore, err := bookingRepo.NewRedis(&bookingRepo.Config{RedisClient: redisClient})
	if err != nil {
		return fmt.Errorf("failed to create booking repository: %w", err)
	}
	notificationStore, err := notificationRepo.NewRedis(&notificationRepo.Config{RedisClient: redisClient})
	if err != nil {
		return fmt.Errorf("failed to create notification repository: %w", err)
	}
	queue, err := events.NewRedis(&events.Config{
		RedisClient: redisClient,
		Logger:      logger.Named("events"),
	})
	if err != nil {
		return fmt.Errorf("failed to create event queue: %w", err)
	}

	// Services
	clk := clock.New()
	ids := uuid.New()

	linkSvc, err := links.New(&links.Config{
		Secret: []byte(cfg.LinkSecret),
		Issuer: serviceName,
		Clock:  clk,
	})
	if err != nil {
		return fmt.Errorf("failed to create link service: %w", err)
	}

	directorySvc, err := directory.New(&directory.Config{
		FriendRepo:    friendStore,
		Clock:         clk,
		UUIDGenerator: ids,
		Logger:        logger.Named("directory"),
	})
	if err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	sessionSvc, err := sessions.New(&sessions.Config{
		TimeZone:      loc,
		SessionRepo:   sessionStore,
		Clock:         clk,
		UUIDGenerator: ids,
		Logger:        logger.Named("sessions"),
	})
	if err != nil {
		return fmt.Errorf("failed to create session registry: %w", err)
	}

	messages, err := messaging.NewService(&messaging.ServiceConfig{TimeZone: loc})
	if err != nil {
		return fmt.Errorf("failed to create messaging service: %w", err)
	}

	dispatcher := dispatch.NewRetryingDispatcher(
		dispatch.NewLogDispatcher(logger.Named("sms"), ids),
		&dispatch.RetryConfig{
			MaxTries: cfg.Notify.MaxTries,
			Logger:   logger.Named("dispatch"),
		},
	)

	notifier, err := notify.New(&notify.Config{
		Workers:          cfg.Notify.Workers,
		QueueSize:        cfg.Notify.QueueSize,
		NotificationRepo: notificationStore,
		Dispatcher:       dispatcher,
		Clock:            clk,
		Logger:           logger.Named("notify"),
	})
	if err != nil {
		return fmt.Errorf("failed to create notifier: %w", err)
	}

	bookingSvc, err := booking.New(&booking.Config{
		CancelDeadline: cfg.CancelDeadline,
		BaseURL:        cfg.BaseURL,
		BookingRepo:    bookingStore,
		Sessions:       sessionSvc,
		Directory:      directorySvc,
		Links:          linkSvc,
		Messages:       messages,
		Notifier:       notifier,
		Events:         queue,
		Clock:          clk,
		UUIDGenerator:  ids,
		Logger:         logger.Named("booking"),
	})
	if err != nil {
		return fmt.Errorf("failed to create booking service: %w", err)
	}

	schedulerSvc, err := scheduler.New(&scheduler.Config{
		Weekday:        weekday,
		TimeZone:       loc,
		StartTime:      cfg.Session.StartTime,
		EndTime:        cfg.Session.EndTime,
		Capacity:       cfg.Session.Capacity,
		Location:       cfg.Session.Location,
		AutoPublish:    cfg.Session.AutoPublish,
		InviteOnCreate: cfg.Session.InviteOnCreate,
		Interval:       cfg.SchedulerInterval,
		BaseURL:        cfg.BaseURL,
		Sessions:       sessionSvc,
		Directory:      directorySvc,
		Links:          linkSvc,
		Messages:       messages,
		Notifier:       notifier,
		Clock:          clk,
		Logger:         logger.Named("scheduler"),
	})
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	promoter, err := worker.New(&worker.Config{
		Queue:    queue,
		Promoter: bookingSvc,
		Logger:   logger.Named("worker"),
	})
	if err != nil {
		return fmt.Errorf("failed to create promotion worker: %w", err)
	}

	server, err := api.New(&api.Config{
		Bookings:   bookingSvc,
		Sessions:   sessionSvc,
		Directory:  directorySvc,
		Scheduler:  schedulerSvc,
		Calendar:   calendar.New(),
		Clock:      clk,
		AdminToken: cfg.AdminToken,
		Logger:     logger.Named("http"),
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	// The notifier outlives the producers so messages enqueued during their
	// shutdown are still delivered.
	notifyCtx, stopNotifier := context.WithCancel(context.Background())
	defer stopNotifier()
	notifierDone := make(chan error, 1)
	go func() { notifierDone <- notifier.Run(notifyCtx) }()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return promoter.Run(gctx) })
	g.Go(func() error { return server.Run(gctx, cfg.HTTP.Addr, cfg.HTTP.ShutdownTimeout) })

	if cfg.SchedulerEnabled {
		g.Go(func() error { return schedulerSvc.Run(gctx) })
	}

	if cfg.Discord.Token != "" {
		bot, err := discord.New(&discord.Config{
			Token:         cfg.Discord.Token,
			ApplicationID: cfg.Discord.AppID,
			GuildID:       cfg.Discord.GuildID,
			AdminRole:     cfg.Discord.AdminRole,
			TimeZone:      loc,
			Defaults: discord.SessionDefaults{
				StartTime: cfg.Session.StartTime,
				EndTime:   cfg.Session.EndTime,
				Capacity:  cfg.Session.Capacity,
				Location:  cfg.Session.Location,
			},
			Bookings:  bookingSvc,
			Sessions:  sessionSvc,
			Scheduler: schedulerSvc,
			Messages:  messages,
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create Discord bot: %w", err)
		}
		g.Go(func() error { return bot.Run(gctx) })
	}

	logger.Info("pickup is running",
		zap.String("env", cfg.Env),
		zap.String("http_addr", cfg.HTTP.Addr),
		zap.Bool("scheduler", cfg.SchedulerEnabled),
		zap.Bool("discord", cfg.Discord.Token != ""),
	)

	runErr := g.Wait()

	stopNotifier()
	if err := <-notifierDone; err != nil {
		logger.Error("notifier stopped with error", zap.Error(err))
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	logger.Info("pickup has shut down")
	return nil
}
