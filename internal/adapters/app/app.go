package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"KharitonBot/internal/adapters/app/service_provider"
)

type App struct {
	ServiceProvider *service_provider.ServiceProvider
}

func New() (*App, error) {
	a := &App{}
	if err := a.initDeps(); err != nil {
		return nil, fmt.Errorf("init deps: %w", err)
	}
	return a, nil
}

func (a *App) Start() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := a.ServiceProvider.Logger()
	defer func() { _ = log.Sync() }()

	sweeper := a.startSessionSweeper(log)
	defer sweeper.Stop()

	a.ServiceProvider.BotRunner().Start(ctx)
}

// startSessionSweeper schedules the expired-session sweep. The sweep is pure
// maintenance: lazy expiry on read remains authoritative.
func (a *App) startSessionSweeper(log *zap.Logger) *cron.Cron {
	c := cron.New()
	sessions := a.ServiceProvider.SessionService()
	schedule := a.ServiceProvider.Config().SweepSchedule

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		deleted, err := sessions.CleanExpired(ctx)
		if err != nil {
			log.Error("session sweep failed", zap.Error(err))
			return
		}
		if deleted > 0 {
			log.Info("swept expired sessions", zap.Int64("deleted", deleted))
		}
	})
	if err != nil {
		log.Error("invalid sweep schedule, sweeper disabled",
			zap.String("schedule", schedule), zap.Error(err))
		return c
	}

	c.Start()
	return c
}
