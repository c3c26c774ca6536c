package cron

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingExpirer struct {
	calls atomic.Int32
}

func (e *countingExpirer) ExpireIdle(context.Context) (int, error) {
	e.calls.Add(1)
	return 0, nil
}

func TestSchedulerRunsExpirer(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := &countingExpirer{}

	s := New(log, e, "@every 1s", nil)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for e.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	if e.calls.Load() == 0 {
		t.Fatal("expirer was not called")
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := New(log, &countingExpirer{}, "not a spec", nil).Start(); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}
