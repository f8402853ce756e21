package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"organizer/internal/bot"
	"organizer/internal/config"
	"organizer/internal/repository"
	"organizer/internal/service"
	"organizer/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server and, when a token is configured, the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, log, closeLog, err := g.load()
			if err != nil {
				return err
			}
			defer closeLog()

			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.InsecureSecret() {
		log.Warn("using the built-in session secret, set session_secret before exposing the server")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := repository.NewDB(cfg.Database, log)
	if err != nil {
		return err
	}
	defer repository.Close(db)
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	contactRepo := repository.NewContactRepository(db)
	eventRepo := repository.NewEventRepository(db)
	tags := service.NewTagService(repository.NewTagRepository(db), eventRepo)

	loc := cfg.Location()
	server := web.New(web.Services{
		Users:      service.NewUserService(userRepo),
		Categories: service.NewCategoryService(categoryRepo, contactRepo, eventRepo),
		Tags:       tags,
		Contacts:   service.NewContactService(contactRepo, categoryRepo),
		Events:     service.NewEventService(eventRepo, categoryRepo, tags),
	}, web.Options{
		SessionSecret: cfg.SessionSecret,
		SecureCookies: cfg.IsProduction(),
		Location:      loc,
		PerPage:       cfg.ItemsPerPage,
		Logger:        log,
		Health:        sqlDB.PingContext,
	})

	if cfg.Telegram.Enabled() {
		stopBot, err := startBot(ctx, cfg, loc, userRepo, service.NewDigestService(eventRepo), log)
		if err != nil {
			return err
		}
		defer stopBot()
	} else {
		log.Info("telegram token not set, bot disabled")
	}

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.Listen, "env", cfg.Env)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}

// startBot polls Telegram and schedules the daily digest. The returned function stops both and
// waits for the poller to exit.
func startBot(ctx context.Context, cfg *config.Config, loc *time.Location, users *repository.UserRepository, digest *service.DigestService, log *slog.Logger) (func(), error) {
	telegramBot, err := bot.New(cfg.Telegram.Token, users, digest, loc, log)
	if err != nil {
		return nil, err
	}

	scheduler := service.NewSchedulerService(loc, log)
	id, err := scheduler.ScheduleDaily(cfg.Telegram.DigestTime, "daily digest", telegramBot.SendDailyDigests)
	if err != nil {
		return nil, fmt.Errorf("schedule digest: %w", err)
	}
	scheduler.Start()
	log.Info("daily digest scheduled", "next", scheduler.Next(id))

	botCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := telegramBot.Start(botCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("bot stopped", "error", err)
		}
	}()

	return func() {
		cancel()
		scheduler.Stop()
		<-done
	}, nil
}
