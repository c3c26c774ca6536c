package collectorservice

import (
	"errors"
	"fmt"
)

// Phase - состояние сбора данных в рамках одной сессии.
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseThinking   Phase = "thinking"
	PhaseGenerating Phase = "generating"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
	PhaseClosed     Phase = "closed"
)

var ErrInvalidTransition = errors.New("invalid phase transition")

type transition struct {
	From Phase
	To   Phase
}

var allowedTransitions = map[transition]bool{
	// ответ принят, ждём реплику ассистента
	{PhaseCollecting, PhaseThinking}: true,

	// следующий вопрос либо переход к генерации
	{PhaseThinking, PhaseCollecting}: true,
	{PhaseThinking, PhaseGenerating}: true,

	{PhaseGenerating, PhaseDone}:   true,
	{PhaseGenerating, PhaseFailed}: true,

	// закрыть сессию можно из любого состояния
	{PhaseCollecting, PhaseClosed}: true,
	{PhaseThinking, PhaseClosed}:   true,
	{PhaseGenerating, PhaseClosed}: true,
	{PhaseDone, PhaseClosed}:       true,
	{PhaseFailed, PhaseClosed}:     true,
}

func CanTransition(from, to Phase) bool {
	return allowedTransitions[transition{from, to}]
}

func checkTransition(from, to Phase) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	return nil
}

// Inert - после завершения коллектор больше не принимает ввод.
func (p Phase) Inert() bool {
	return p == PhaseDone || p == PhaseFailed || p == PhaseClosed
}
