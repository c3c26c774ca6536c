package collectorservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	draftmodel "notaFacilBot/invoice-bot/internal/domain/model/draft"
	messagemodel "notaFacilBot/invoice-bot/internal/domain/model/message"
	"notaFacilBot/invoice-bot/internal/pkg/logger/sl"
)

const KeyEnter = "Enter"

const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

var ErrUnknownChannel = errors.New("unknown notification channel")

type Config struct {
	ReplyDelay        time.Duration `yaml:"reply_delay" env:"COLLECTOR_REPLY_DELAY" env-default:"1s"`
	GenerationDelay   time.Duration `yaml:"generation_delay" env:"COLLECTOR_GENERATION_DELAY" env-default:"3s"`
	GenerationTimeout time.Duration `yaml:"generation_timeout" env:"COLLECTOR_GENERATION_TIMEOUT" env-default:"30s"`
}

type Notifications struct {
	Email    bool `json:"email"`
	WhatsApp bool `json:"whatsapp"`
}

// Listener получает каждое добавленное сообщение. Вызывается вне блокировки.
type Listener func(msg messagemodel.Message)

type State struct {
	SessionID     string                 `json:"session_id"`
	Messages      []messagemodel.Message `json:"messages"`
	Draft         draftmodel.Draft       `json:"draft"`
	Step          int                    `json:"step"`
	Questions     int                    `json:"questions"`
	Phase         Phase                  `json:"phase"`
	Generating    bool                   `json:"generating"`
	Disabled      bool                   `json:"disabled"`
	Indicator     string                 `json:"indicator,omitempty"`
	Input         string                 `json:"input"`
	Notifications Notifications          `json:"notifications"`
	Artifact      *Artifact              `json:"artifact,omitempty"`
}

// Collector ведёт диалог по фиксированной схеме вопросов и собирает черновик.
type Collector struct {
	mu sync.Mutex

	id        string
	log       *slog.Logger
	schema    draftmodel.Schema
	cfg       Config
	scheduler Scheduler
	generator Generator

	messages      []messagemodel.Message
	seq           int
	step          int
	draft         draftmodel.Draft
	input         string
	phase         Phase
	notifications Notifications
	artifact      *Artifact

	// epoch инвалидирует задачи, запланированные до Close
	epoch   uint64
	pending Task

	listeners []Listener
}

func New(
	log *slog.Logger,
	id string,
	schema draftmodel.Schema,
	cfg Config,
	scheduler Scheduler,
	generator Generator,
) (*Collector, error) {
	const op = "collector.New"

	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if scheduler == nil {
		scheduler = TimerScheduler
	}
	if generator == nil {
		generator = SimulatedGenerator{}
	}

	c := &Collector{
		id:        id,
		log:       log.With(slog.String("sessionID", id)),
		schema:    schema,
		cfg:       cfg,
		scheduler: scheduler,
		generator: generator,
		draft:     draftmodel.Draft{},
		phase:     PhaseCollecting,
	}

	c.appendLocked(schema.Opening(), true)

	return c, nil
}

func (c *Collector) ID() string {
	return c.id
}

// Subscribe регистрирует слушателя новых сообщений.
func (c *Collector) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listeners = append(c.listeners, l)
}

// SubmitAnswer принимает ответ на текущий вопрос. Пустой ввод и ввод в
// заблокированном состоянии молча игнорируются; результат - принят ли ответ.
func (c *Collector) SubmitAnswer(text string) bool {
	c.mu.Lock()
	emitted, ok := c.submitLocked(text)
	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, emitted)

	return ok
}

// SetInput обновляет буфер ввода. В заблокированном состоянии поле недоступно.
func (c *Collector) SetInput(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disabledLocked() {
		return false
	}

	c.input = text

	return true
}

// Submit отправляет содержимое буфера ввода (кнопка "отправить").
func (c *Collector) Submit() bool {
	c.mu.Lock()
	emitted, ok := c.submitLocked(c.input)
	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, emitted)

	return ok
}

// KeyPress: Enter без Shift отправляет буфер, Shift+Enter добавляет перевод строки.
// Возвращает true, если нажатие привело к отправке.
func (c *Collector) KeyPress(key string, shift bool) bool {
	if key != KeyEnter {
		return false
	}

	c.mu.Lock()

	if c.disabledLocked() {
		c.mu.Unlock()
		return false
	}

	if shift {
		c.input += "\n"
		c.mu.Unlock()
		return false
	}

	emitted, ok := c.submitLocked(c.input)
	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, emitted)

	return ok
}

func (c *Collector) SetNotifications(n Notifications) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.notifications = n
}

// ToggleNotification переключает один канал и возвращает новое значение.
func (c *Collector) ToggleNotification(channel string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch channel {
	case ChannelEmail:
		c.notifications.Email = !c.notifications.Email
		return c.notifications.Email, nil
	case ChannelWhatsApp:
		c.notifications.WhatsApp = !c.notifications.WhatsApp
		return c.notifications.WhatsApp, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
}

func (c *Collector) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := make([]messagemodel.Message, len(c.messages))
	copy(messages, c.messages)

	st := State{
		SessionID:     c.id,
		Messages:      messages,
		Draft:         c.draft.Clone(),
		Step:          c.step,
		Questions:     len(c.schema.Fields),
		Phase:         c.phase,
		Generating:    c.phase == PhaseGenerating,
		Disabled:      c.disabledLocked(),
		Input:         c.input,
		Notifications: c.notifications,
	}

	if st.Generating {
		st.Indicator = c.schema.Generating
	}
	if c.artifact != nil {
		a := *c.artifact
		st.Artifact = &a
	}

	return st
}

// Close отменяет отложенные задачи и делает коллектор инертным.
func (c *Collector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseClosed {
		return
	}

	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}

	c.epoch++
	c.draft = draftmodel.Draft{}
	c.input = ""
	c.transitionLocked(PhaseClosed)

	c.log.Info("collector closed")
}

func (c *Collector) submitLocked(text string) ([]messagemodel.Message, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	if c.disabledLocked() {
		c.log.Debug("submission ignored", slog.String("phase", string(c.phase)))
		return nil, false
	}

	msg := c.appendLocked(text, false)

	if c.step < len(c.schema.Fields) {
		c.draft[c.schema.Fields[c.step].Key] = text
	}

	c.input = ""
	c.transitionLocked(PhaseThinking)
	c.scheduleLocked(c.cfg.ReplyDelay, c.advance)

	return []messagemodel.Message{msg}, true
}

// advance - реплика ассистента после "раздумий".
func (c *Collector) advance(epoch uint64) {
	c.mu.Lock()

	if epoch != c.epoch || c.phase != PhaseThinking {
		c.mu.Unlock()
		return
	}

	c.pending = nil

	var emitted []messagemodel.Message

	if c.step < len(c.schema.Fields)-1 {
		c.step++
		emitted = append(emitted, c.appendLocked(c.schema.Fields[c.step].Prompt, true))
		c.transitionLocked(PhaseCollecting)
	} else {
		emitted = append(emitted, c.appendLocked(c.schema.Summary, true))
		c.transitionLocked(PhaseGenerating)
		c.scheduleLocked(c.cfg.GenerationDelay, c.complete)

		c.log.Info("all answers collected, generating invoice")
	}

	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, emitted)
}

// complete завершает фазу генерации.
func (c *Collector) complete(epoch uint64) {
	const op = "Collector.complete"

	c.mu.Lock()

	if epoch != c.epoch || c.phase != PhaseGenerating {
		c.mu.Unlock()
		return
	}

	draft := c.draft.Clone()
	generator := c.generator
	c.mu.Unlock()

	timeout := c.cfg.GenerationTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	artifact, err := generator.Generate(ctx, c.id, draft)
	cancel()

	c.mu.Lock()

	// сессию могли закрыть, пока шла генерация
	if epoch != c.epoch || c.phase != PhaseGenerating {
		c.mu.Unlock()
		return
	}

	c.pending = nil

	var emitted []messagemodel.Message

	if err != nil {
		c.log.Error("failed to generate invoice", slog.String("op", op), sl.Err(err))

		emitted = append(emitted, c.appendLocked(c.schema.Failure, true))
		c.transitionLocked(PhaseFailed)
	} else {
		c.artifact = &artifact

		emitted = append(emitted, c.appendLocked(c.schema.Success, true))
		c.transitionLocked(PhaseDone)

		c.log.Info("invoice generated", slog.String("reference", artifact.Reference))
	}

	// черновик не хранится после генерации
	c.draft = draftmodel.Draft{}

	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, emitted)
}

func (c *Collector) scheduleLocked(d time.Duration, fn func(epoch uint64)) {
	epoch := c.epoch
	c.pending = c.scheduler.AfterFunc(d, func() {
		fn(epoch)
	})
}

func (c *Collector) appendLocked(text string, fromAssistant bool) messagemodel.Message {
	c.seq++

	msg := messagemodel.Message{
		Id:              strconv.Itoa(c.seq),
		Text:            text,
		IsFromAssistant: fromAssistant,
	}

	c.messages = append(c.messages, msg)

	return msg
}

func (c *Collector) transitionLocked(to Phase) {
	if err := checkTransition(c.phase, to); err != nil {
		c.log.Error("unexpected phase change", sl.Err(err))
		return
	}

	c.log.Debug("phase transition", slog.String("from", string(c.phase)), slog.String("to", string(to)))
	c.phase = to
}

// disabledLocked: ввод закрыт во время ожидания ответа, генерации и после неё.
func (c *Collector) disabledLocked() bool {
	return c.phase != PhaseCollecting || c.step >= len(c.schema.Fields)
}

func notify(listeners []Listener, msgs []messagemodel.Message) {
	for _, m := range msgs {
		for _, l := range listeners {
			l(m)
		}
	}
}
