package sessionservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"notaFacilBot/invoice-bot/internal/pkg/logger/sl"
	collectorservice "notaFacilBot/invoice-bot/internal/service/collector"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type Config struct {
	TTL       time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"30m"`
	SweepSpec string        `yaml:"sweep_spec" env:"SESSION_SWEEP_SPEC" env-default:"@every 1m"`
}

// Factory создаёт коллектор для новой сессии.
type Factory func(id uuid.UUID) (*collectorservice.Collector, error)

type entry struct {
	collector *collectorservice.Collector
	lastSeen  time.Time
}

// Store хранит живые сессии в памяти. Черновики никуда не сохраняются.
type Store struct {
	mu       sync.Mutex
	log      *slog.Logger
	factory  Factory
	ttl      time.Duration
	now      func() time.Time
	sessions map[uuid.UUID]*entry
}

func New(log *slog.Logger, factory Factory, ttl time.Duration) *Store {
	return &Store{
		log:      log,
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*entry),
	}
}

func (s *Store) Create(ctx context.Context) (uuid.UUID, *collectorservice.Collector, error) {
	const op = "Store.Create"

	id := uuid.New()

	c, err := s.factory(id)
	if err != nil {
		s.log.Error("failed to create collector", slog.String("op", op), sl.Err(err))
		return uuid.Nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.sessions[id] = &entry{collector: c, lastSeen: s.now()}
	s.mu.Unlock()

	s.log.Info("session created", slog.String("op", op), slog.String("sessionID", id.String()))

	return id, c, nil
}

// Get возвращает коллектор сессии и продлевает её жизнь.
func (s *Store) Get(id uuid.UUID) (*collectorservice.Collector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	e.lastSeen = s.now()

	return e.collector, nil
}

func (s *Store) Close(id uuid.UUID) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	e.collector.Close()

	return nil
}

// ExpireIdle закрывает сессии, к которым не обращались дольше TTL.
func (s *Store) ExpireIdle(_ context.Context) (int, error) {
	const op = "Store.ExpireIdle"

	if s.ttl <= 0 {
		return 0, nil
	}

	deadline := s.now().Add(-s.ttl)

	var expired []*collectorservice.Collector

	s.mu.Lock()
	for id, e := range s.sessions {
		if e.lastSeen.Before(deadline) {
			expired = append(expired, e.collector)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}

	if len(expired) > 0 {
		s.log.Info("idle sessions expired", slog.String("op", op), slog.Int("count", len(expired)))
	}

	return len(expired), nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// CloseAll закрывает все сессии при остановке сервиса.
func (s *Store) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[uuid.UUID]*entry)
	s.mu.Unlock()

	for _, e := range sessions {
		e.collector.Close()
	}
}
