package app

import (
	"context"
	"fmt"
	"log/slog"

	grpcapp "notaFacilBot/invoice-bot/internal/app/grpc"
	httpapp "notaFacilBot/invoice-bot/internal/app/http"
	"notaFacilBot/invoice-bot/internal/config"
	"notaFacilBot/invoice-bot/internal/cron"
	draftmodel "notaFacilBot/invoice-bot/internal/domain/model/draft"
	"notaFacilBot/invoice-bot/internal/pkg/logger/sl"
	"notaFacilBot/invoice-bot/internal/repository"
	collectorservice "notaFacilBot/invoice-bot/internal/service/collector"
	historyservice "notaFacilBot/invoice-bot/internal/service/history"
	sessionservice "notaFacilBot/invoice-bot/internal/service/session"
	"notaFacilBot/invoice-bot/internal/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

type App struct {
	log *slog.Logger

	HTTPServer *httpapp.App
	GRPCServer *grpcapp.App

	telegram *telegram.Handler
	bot      *tgbotapi.BotAPI

	scheduler    *cron.Scheduler
	sessions     *sessionservice.Store
	closeHistory func()
	cancel       context.CancelFunc
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	repo, closeHistory, err := repository.New(ctx, cfg.History)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("history source opened", slog.String("source", cfg.History.Source))

	history := historyservice.New(log, repo, loc)

	schema := draftmodel.DefaultSchema()

	sessions := sessionservice.New(log, func(id uuid.UUID) (*collectorservice.Collector, error) {
		return collectorservice.New(log, id.String(), schema, cfg.Collector, collectorservice.TimerScheduler, collectorservice.SimulatedGenerator{})
	}, cfg.Session.TTL)

	secret := []byte(cfg.JWT.Secret)

	a := &App{
		log:          log,
		HTTPServer:   httpapp.New(log, &cfg.HTTP, sessions, history, secret, cfg.JWT.TTL),
		GRPCServer:   grpcapp.New(log, history, &cfg.GRPC),
		scheduler:    cron.New(log, sessions, cfg.Session.SweepSpec, loc),
		sessions:     sessions,
		closeHistory: closeHistory,
	}

	if cfg.Telegram.BotToken != "" {
		bot, err := telegram.NewBot(&cfg.Telegram)
		if err != nil {
			closeHistory()
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		a.bot = bot
		a.telegram = telegram.NewHandler(log, bot, sessions, history)
	} else {
		log.Info("telegram bot token is empty, bot disabled")
	}

	return a, nil
}

// Start запускает фоновые части: очистку сессий и Telegram-бота.
func (a *App) Start() error {
	const op = "app.Start"

	if err := a.scheduler.Start(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if a.telegram != nil {
		ctx, cancel := context.WithCancel(context.Background())
		a.cancel = cancel

		go func() {
			if err := a.telegram.Start(ctx, a.bot); err != nil && ctx.Err() == nil {
				a.log.Error("telegram bot stopped", sl.Err(err))
			}
		}()
	}

	return nil
}

func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.bot != nil {
		a.bot.StopReceivingUpdates()
	}

	a.HTTPServer.Stop()
	a.GRPCServer.Stop()
	a.scheduler.Stop()

	a.sessions.CloseAll()
	a.closeHistory()
}
