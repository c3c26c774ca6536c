package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	messagemodel "notaFacilBot/invoice-bot/internal/domain/model/message"
	"notaFacilBot/invoice-bot/internal/pkg/logger/sl"
	collectorservice "notaFacilBot/invoice-bot/internal/service/collector"
	historyservice "notaFacilBot/invoice-bot/internal/service/history"
	sessionservice "notaFacilBot/invoice-bot/internal/service/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

const (
	textNoSession    = "Use /start para emitir uma nova nota fiscal."
	textWait         = "Aguarde, estou processando sua última resposta."
	textFinished     = "Esta conversa já foi concluída. Use /start para emitir outra nota."
	textCancelled    = "Conversa encerrada. O rascunho foi descartado."
	textUnknown      = "Comando desconhecido. Use /start, /historico ou /cancel."
	textError        = "Ocorreu um erro. Tente novamente mais tarde."
	textHistoryTitle = "Histórico de notas fiscais"
)

type Config struct {
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
}

// Sender - часть tgbotapi.BotAPI, которой нужен обработчик.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type UpdatesSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type SessionStore interface {
	Create(ctx context.Context) (uuid.UUID, *collectorservice.Collector, error)
	Get(id uuid.UUID) (*collectorservice.Collector, error)
	Close(id uuid.UUID) error
}

type HistorySearcher interface {
	Search(ctx context.Context, query string, period string) (historyservice.Result, error)
}

type Handler struct {
	log     *slog.Logger
	bot     Sender
	store   SessionStore
	history HistorySearcher
	km      *KeyboardManager

	mu    sync.Mutex
	chats map[int64]uuid.UUID
}

func NewBot(cfg *Config) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return bot, nil
}

func NewHandler(log *slog.Logger, bot Sender, store SessionStore, history HistorySearcher) *Handler {
	return &Handler{
		log:     log.With(slog.String("component", "telegram")),
		bot:     bot,
		store:   store,
		history: history,
		km:      NewKeyboardManager(),
		chats:   make(map[int64]uuid.UUID),
	}
}

// Start читает обновления до отмены контекста. Каждое сообщение обрабатывается
// в своей горутине, порядок внутри сессии обеспечивает коллектор.
func (h *Handler) Start(ctx context.Context, source UpdatesSource) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := source.GetUpdatesChan(u)

	h.log.Info("telegram bot started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}

			go h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		h.handleCommand(ctx, message.Chat.ID, message.Command(), message.CommandArguments())
		return
	}

	if command := ParseButtonCommand(message.Text); command != "" {
		h.handleCommand(ctx, message.Chat.ID, command, "")
		return
	}

	h.handleText(message.Chat.ID, message.Text)
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, command string, args string) {
	switch command {
	case "start":
		h.handleStart(ctx, chatID)
	case "cancel":
		h.handleCancel(chatID)
	case "email", "whatsapp":
		h.handleNotifications(chatID, command)
	case "historico":
		h.handleHistory(ctx, chatID, args)
	default:
		h.sendMessage(chatID, textUnknown, h.keyboardFor(chatID))
	}
}

// handleStart открывает новую сессию, предыдущая при этом закрывается.
func (h *Handler) handleStart(ctx context.Context, chatID int64) {
	const op = "telegram.handleStart"

	log := h.log.With(slog.String("op", op), slog.Int64("chat_id", chatID))

	if prev, ok := h.detach(chatID); ok {
		_ = h.store.Close(prev)
	}

	id, c, err := h.store.Create(ctx)
	if err != nil {
		log.Error("failed to create session", sl.Err(err))
		h.sendMessage(chatID, textError, keyboardIdle)
		return
	}

	h.mu.Lock()
	h.chats[chatID] = id
	h.mu.Unlock()

	c.Subscribe(func(msg messagemodel.Message) {
		if msg.IsFromAssistant {
			h.sendMessage(chatID, msg.Text, keyboardInSession)
		}
	})

	st := c.Snapshot()
	if len(st.Messages) > 0 {
		h.sendMessage(chatID, st.Messages[0].Text, keyboardInSession)
	}

	log.Info("session started", slog.String("session_id", id.String()))
}

func (h *Handler) handleCancel(chatID int64) {
	if id, ok := h.detach(chatID); ok {
		_ = h.store.Close(id)
	}

	h.sendMessage(chatID, textCancelled, keyboardIdle)
}

func (h *Handler) handleNotifications(chatID int64, channel string) {
	c, ok := h.collector(chatID)
	if !ok {
		h.sendMessage(chatID, textNoSession, keyboardIdle)
		return
	}

	enabled, err := c.ToggleNotification(channel)
	if err != nil {
		h.log.Error("failed to toggle notifications", sl.Err(err))
		return
	}

	name := "e-mail"
	if channel == collectorservice.ChannelWhatsApp {
		name = "WhatsApp"
	}

	state := "desativadas"
	if enabled {
		state = "ativadas"
	}

	h.sendMessage(chatID, fmt.Sprintf("Notificações por %s %s.", name, state), keyboardInSession)
}

func (h *Handler) handleHistory(ctx context.Context, chatID int64, query string) {
	const op = "telegram.handleHistory"

	result, err := h.history.Search(ctx, strings.TrimSpace(query), string(historyservice.PeriodAll))
	if err != nil {
		h.log.Error("failed to search history", slog.String("op", op), sl.Err(err))
		h.sendMessage(chatID, textError, h.keyboardFor(chatID))
		return
	}

	h.sendMessage(chatID, FormatHistory(result), h.keyboardFor(chatID))
}

func (h *Handler) handleText(chatID int64, text string) {
	c, ok := h.collector(chatID)
	if !ok {
		h.sendMessage(chatID, textNoSession, keyboardIdle)
		return
	}

	if c.SubmitAnswer(text) {
		return
	}

	// пустой ввод молча игнорируется
	if strings.TrimSpace(text) == "" {
		return
	}

	if c.Snapshot().Phase.Inert() {
		h.sendMessage(chatID, textFinished, keyboardIdle)
		return
	}

	h.sendMessage(chatID, textWait, keyboardInSession)
}

// FormatHistory рендерит результат поиска одним сообщением.
func FormatHistory(result historyservice.Result) string {
	if result.Empty() {
		return historyservice.EmptyStateTitle + "\n" + result.EmptyStateMessage()
	}

	var b strings.Builder

	b.WriteString(textHistoryTitle)

	for _, v := range result.Views() {
		fmt.Fprintf(&b, "\n\n%s · %s\n%s\n%s · %s · %s",
			v.Id, v.StatusLabel, v.Description, v.Client, v.ValueFormatted, v.DateFormatted)
	}

	return b.String()
}

func (h *Handler) collector(chatID int64) (*collectorservice.Collector, bool) {
	h.mu.Lock()
	id, ok := h.chats[chatID]
	h.mu.Unlock()

	if !ok {
		return nil, false
	}

	c, err := h.store.Get(id)
	if err != nil {
		// сессию мог закрыть планировщик по простою
		if errors.Is(err, sessionservice.ErrSessionNotFound) {
			h.detachSession(chatID, id)
		}
		return nil, false
	}

	return c, true
}

func (h *Handler) detach(chatID int64) (uuid.UUID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id, ok := h.chats[chatID]
	delete(h.chats, chatID)

	return id, ok
}

func (h *Handler) keyboardFor(chatID int64) keyboardState {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.chats[chatID]; ok {
		return keyboardInSession
	}

	return keyboardIdle
}

func (h *Handler) sendMessage(chatID int64, text string, state keyboardState) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = h.km.GetKeyboard(state)

	if _, err := h.bot.Send(msg); err != nil {
		h.log.Error("failed to send message", slog.Int64("chat_id", chatID), sl.Err(err))
	}
}

// detachSession снимает привязку, только если чат всё ещё указывает на id:
// параллельный /start мог уже открыть новую сессию.
func (h *Handler) detachSession(chatID int64, id uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.chats[chatID]; !ok || cur != id {
		return false
	}

	delete(h.chats, chatID)

	return true
}
