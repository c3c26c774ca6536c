package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// SessionExpirer закрывает простаивающие сессии.
type SessionExpirer interface {
	ExpireIdle(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	log     *slog.Logger
	expirer SessionExpirer
	spec    string
}

func New(log *slog.Logger, expirer SessionExpirer, spec string, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		log:     log,
		expirer: expirer,
		spec:    spec,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.expire)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Cron scheduler started", "spec", s.spec)

	return nil
}

func (s *Scheduler) expire() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.expirer.ExpireIdle(ctx)
	if err != nil {
		s.log.Error("failed to expire idle sessions", "error", err)
		return
	}

	if n > 0 {
		s.log.Debug("idle sessions expired", "count", n)
	}
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Cron scheduler stopped")
}
