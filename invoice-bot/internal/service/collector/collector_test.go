package collectorservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	draftmodel "notaFacilBot/invoice-bot/internal/domain/model/draft"
	messagemodel "notaFacilBot/invoice-bot/internal/domain/model/message"
)

type manualTask struct {
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true

	return true
}

// manualScheduler выполняет задачи только по явному вызову runNext.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &manualTask{delay: d, f: f}
	s.tasks = append(s.tasks, t)

	return t
}

func (s *manualScheduler) runNext() (time.Duration, bool) {
	s.mu.Lock()
	var next *manualTask
	for _, t := range s.tasks {
		if !t.fired && !t.stopped {
			next = t
			break
		}
	}
	if next != nil {
		next.fired = true
	}
	s.mu.Unlock()

	if next == nil {
		return 0, false
	}

	next.f()

	return next.delay, true
}

func (s *manualScheduler) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.tasks {
		if !t.fired && !t.stopped {
			n++
		}
	}

	return n
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string, draftmodel.Draft) (Artifact, error) {
	return Artifact{}, errors.New("backend unavailable")
}

var testConfig = Config{
	ReplyDelay:      time.Second,
	GenerationDelay: 3 * time.Second,
}

func newTestCollector(t *testing.T, gen Generator) (*Collector, *manualScheduler) {
	t.Helper()

	s := &manualScheduler{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := New(log, "test-session", draftmodel.DefaultSchema(), testConfig, s, gen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return c, s
}

var answers = []string{
	"Consultoria em marketing digital",
	"Empresa XYZ Ltda",
	"2000",
	"10",
	"Campanha de janeiro",
}

func TestNewStartsWithGreeting(t *testing.T) {
	c, _ := newTestCollector(t, nil)

	st := c.Snapshot()
	if len(st.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(st.Messages))
	}

	first := st.Messages[0]
	if first.Id != "1" || !first.IsFromAssistant {
		t.Errorf("unexpected first message: %+v", first)
	}
	if first.Text != "Olá! Vou te ajudar a emitir sua nota fiscal. Qual serviço você prestou?" {
		t.Errorf("unexpected greeting: %q", first.Text)
	}
	if st.Phase != PhaseCollecting || st.Disabled {
		t.Errorf("collector must accept input initially, got phase %s disabled %v", st.Phase, st.Disabled)
	}
}

func TestSubmitAnswerIgnoresBlankInput(t *testing.T) {
	c, s := newTestCollector(t, nil)

	for _, in := range []string{"", "   ", "\t\n"} {
		if c.SubmitAnswer(in) {
			t.Errorf("blank input %q must be ignored", in)
		}
	}

	st := c.Snapshot()
	if len(st.Messages) != 1 {
		t.Errorf("message count changed: %d", len(st.Messages))
	}
	if len(st.Draft) != 0 {
		t.Errorf("draft changed: %v", st.Draft)
	}
	if s.pendingCount() != 0 {
		t.Error("no reply must be scheduled for blank input")
	}
}

func TestSubmitAnswerAppendsUserThenAssistantMessage(t *testing.T) {
	c, s := newTestCollector(t, nil)

	if !c.SubmitAnswer(answers[0]) {
		t.Fatal("answer must be accepted")
	}

	st := c.Snapshot()
	if len(st.Messages) != 2 {
		t.Fatalf("expected exactly one new message immediately, got %d total", len(st.Messages))
	}
	if st.Messages[1].IsFromAssistant || st.Messages[1].Text != answers[0] {
		t.Errorf("unexpected user message: %+v", st.Messages[1])
	}
	if !st.Disabled || st.Phase != PhaseThinking {
		t.Errorf("input must be disabled while assistant is thinking, got %s", st.Phase)
	}

	delay, ok := s.runNext()
	if !ok || delay != testConfig.ReplyDelay {
		t.Fatalf("expected reply task with delay %s, got %s (%v)", testConfig.ReplyDelay, delay, ok)
	}

	st = c.Snapshot()
	if len(st.Messages) != 3 {
		t.Fatalf("expected exactly one assistant reply, got %d total", len(st.Messages))
	}
	reply := st.Messages[2]
	if !reply.IsFromAssistant || reply.Text != "Para qual cliente foi prestado o serviço?" {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if st.Step != 1 || st.Phase != PhaseCollecting {
		t.Errorf("expected step 1 collecting, got %d %s", st.Step, st.Phase)
	}
}

func TestFullConversation(t *testing.T) {
	c, s := newTestCollector(t, nil)

	var (
		mu       sync.Mutex
		received []messagemodel.Message
	)
	c.Subscribe(func(m messagemodel.Message) {
		mu.Lock()
		received = append(received, m)
		mu.Unlock()
	})

	for i, a := range answers {
		if !c.SubmitAnswer(a) {
			t.Fatalf("answer %d rejected", i)
		}
		if _, ok := s.runNext(); !ok {
			t.Fatalf("no reply scheduled after answer %d", i)
		}
	}

	st := c.Snapshot()

	want := draftmodel.Draft{
		draftmodel.FieldService:     answers[0],
		draftmodel.FieldClient:      answers[1],
		draftmodel.FieldValue:       answers[2],
		draftmodel.FieldHours:       answers[3],
		draftmodel.FieldDescription: answers[4],
	}
	if len(st.Draft) != len(want) {
		t.Fatalf("expected %d draft fields, got %v", len(want), st.Draft)
	}
	for k, v := range want {
		if st.Draft[k] != v {
			t.Errorf("draft[%s]: expected %q, got %q", k, v, st.Draft[k])
		}
	}

	if st.Phase != PhaseGenerating || !st.Generating || !st.Disabled {
		t.Fatalf("expected generating phase with input disabled, got %+v", st)
	}
	if st.Indicator != "Gerando sua nota fiscal..." {
		t.Errorf("unexpected indicator: %q", st.Indicator)
	}
	last := st.Messages[len(st.Messages)-1]
	if last.Text != draftmodel.DefaultSchema().Summary {
		t.Errorf("expected summary message, got %q", last.Text)
	}

	if c.SubmitAnswer("mais uma coisa") {
		t.Error("submission must be blocked while generating")
	}

	delay, ok := s.runNext()
	if !ok || delay != testConfig.GenerationDelay {
		t.Fatalf("expected generation task with delay %s, got %s (%v)", testConfig.GenerationDelay, delay, ok)
	}

	st = c.Snapshot()
	if st.Phase != PhaseDone || st.Generating {
		t.Fatalf("expected done, got %s", st.Phase)
	}
	if st.Messages[len(st.Messages)-1].Text != draftmodel.DefaultSchema().Success {
		t.Errorf("expected success message last")
	}
	if st.Artifact == nil || st.Artifact.Reference != "simulated:test-session" {
		t.Errorf("unexpected artifact: %+v", st.Artifact)
	}
	if len(st.Draft) != 0 {
		t.Error("draft must be discarded after generation")
	}

	// 1 приветствие + 5 ответов + 4 вопроса + итог + успех
	if len(st.Messages) != 12 {
		t.Errorf("expected 12 messages, got %d", len(st.Messages))
	}
	for i, m := range st.Messages {
		if m.Id != strconv.Itoa(i+1) {
			t.Errorf("message %d: expected id %d, got %s", i, i+1, m.Id)
		}
	}

	mu.Lock()
	if len(received) != 11 {
		t.Errorf("listener expected 11 messages (all but greeting), got %d", len(received))
	}
	mu.Unlock()

	// инертен: ни ввода, ни новых задач
	if c.SubmitAnswer("de novo") || c.SetInput("x") || c.KeyPress(KeyEnter, false) {
		t.Error("collector must be inert after generation")
	}
	if s.pendingCount() != 0 {
		t.Error("no tasks expected after completion")
	}
	if got := len(c.Snapshot().Messages); got != 12 {
		t.Errorf("history must remain visible, got %d messages", got)
	}
}

func TestGenerationFailure(t *testing.T) {
	c, s := newTestCollector(t, failingGenerator{})

	for _, a := range answers {
		c.SubmitAnswer(a)
		s.runNext()
	}
	s.runNext()

	st := c.Snapshot()
	if st.Phase != PhaseFailed {
		t.Fatalf("expected failed phase, got %s", st.Phase)
	}
	if st.Messages[len(st.Messages)-1].Text != draftmodel.DefaultSchema().Failure {
		t.Error("expected failure message last")
	}
	if c.SubmitAnswer("retry") {
		t.Error("failed collector must be inert")
	}
}

func TestKeyPress(t *testing.T) {
	c, s := newTestCollector(t, nil)

	if !c.SetInput("Consultoria") {
		t.Fatal("input must be editable")
	}

	if c.KeyPress(KeyEnter, true) {
		t.Fatal("Shift+Enter must not submit")
	}
	if got := c.Snapshot().Input; got != "Consultoria\n" {
		t.Errorf("Shift+Enter must add a newline, got %q", got)
	}

	if c.KeyPress("a", false) {
		t.Error("non-Enter keys must not submit")
	}

	if !c.KeyPress(KeyEnter, false) {
		t.Fatal("Enter must submit")
	}

	st := c.Snapshot()
	if st.Input != "" {
		t.Errorf("input buffer must be cleared, got %q", st.Input)
	}
	if st.Draft[draftmodel.FieldService] != "Consultoria\n" {
		t.Errorf("unexpected draft value %q", st.Draft[draftmodel.FieldService])
	}

	// во время "раздумий" Enter игнорируется
	if c.KeyPress(KeyEnter, false) || c.SetInput("x") {
		t.Error("input must be disabled while waiting for reply")
	}

	s.runNext()

	c.SetInput("   ")
	if c.Submit() {
		t.Error("blank buffer must not be submitted")
	}
}

func TestCloseDropsPendingTasks(t *testing.T) {
	c, s := newTestCollector(t, nil)

	c.SubmitAnswer(answers[0])
	c.Close()

	if s.pendingCount() != 0 {
		t.Error("pending reply must be stopped on close")
	}

	st := c.Snapshot()
	if st.Phase != PhaseClosed || !st.Disabled {
		t.Errorf("expected closed and disabled, got %s", st.Phase)
	}
	if len(st.Draft) != 0 {
		t.Error("draft must be discarded on close")
	}

	c.Close()
}

func TestStaleCallbackIsIgnored(t *testing.T) {
	c, s := newTestCollector(t, nil)

	c.SubmitAnswer(answers[0])

	s.mu.Lock()
	task := s.tasks[0]
	s.mu.Unlock()

	c.Close()

	// таймер уже сработал в рантайме, Stop опоздал
	task.f()

	if got := len(c.Snapshot().Messages); got != 2 {
		t.Errorf("stale callback must not append messages, got %d", got)
	}
}

func TestToggleNotification(t *testing.T) {
	c, _ := newTestCollector(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = c.ToggleNotification(ChannelEmail)
		}()
		go func() {
			defer wg.Done()
			_, _ = c.ToggleNotification(ChannelWhatsApp)
		}()
	}
	wg.Wait()

	// 25 переключений каждого канала
	if n := c.Snapshot().Notifications; !n.Email || !n.WhatsApp {
		t.Errorf("expected both channels enabled, got %+v", n)
	}

	enabled, err := c.ToggleNotification(ChannelEmail)
	if err != nil || enabled {
		t.Errorf("expected e-mail disabled, got %v, %v", enabled, err)
	}

	if _, err := c.ToggleNotification("sms"); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("expected ErrUnknownChannel, got %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Phase
		want     bool
	}{
		{PhaseCollecting, PhaseThinking, true},
		{PhaseThinking, PhaseGenerating, true},
		{PhaseGenerating, PhaseGenerating, false},
		{PhaseDone, PhaseCollecting, false},
		{PhaseCollecting, PhaseGenerating, false},
		{PhaseFailed, PhaseClosed, true},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}

	if err := checkTransition(PhaseDone, PhaseThinking); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestNewRejectsInvalidSchema(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := New(log, "x", draftmodel.Schema{}, testConfig, &manualScheduler{}, nil); !errors.Is(err, draftmodel.ErrInvalidSchema) {
		t.Errorf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestSimulatedGeneratorWithTimer(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := Config{ReplyDelay: time.Millisecond, GenerationDelay: time.Millisecond}

	c, err := New(log, "timer", draftmodel.Schema{
		Summary: "ok",
		Success: "done",
		Fields:  []draftmodel.Field{{Key: draftmodel.FieldService, Prompt: "?"}},
	}, cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	finished := make(chan struct{})
	c.Subscribe(func(m messagemodel.Message) {
		if m.Text == "done" {
			close(finished)
		}
	})

	c.SubmitAnswer("Consultoria")

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("generation did not complete")
	}

	if c.Snapshot().Phase != PhaseDone {
		t.Errorf("expected done phase")
	}
}
