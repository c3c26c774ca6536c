package collectorservice

import (
	"context"
	"time"

	draftmodel "notaFacilBot/invoice-bot/internal/domain/model/draft"
)

// Task - отложенная задача, которую можно отменить.
type Task interface {
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

// TimerScheduler планирует задачи на time.AfterFunc.
var TimerScheduler Scheduler = timerScheduler{}

// Artifact - ссылка на сформированный документ.
type Artifact struct {
	Reference string `json:"reference"`
}

// Generator превращает заполненный черновик в документ.
type Generator interface {
	Generate(ctx context.Context, sessionID string, draft draftmodel.Draft) (Artifact, error)
}

// SimulatedGenerator ничего не формирует и всегда завершается успешно.
type SimulatedGenerator struct{}

func (SimulatedGenerator) Generate(_ context.Context, sessionID string, _ draftmodel.Draft) (Artifact, error) {
	return Artifact{Reference: "simulated:" + sessionID}, nil
}
