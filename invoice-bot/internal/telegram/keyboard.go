package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type keyboardState int

const (
	keyboardIdle keyboardState = iota
	keyboardInSession
)

// KeyboardManager хранит клавиатуры для чата без сессии и во время сбора данных
type KeyboardManager struct {
	keyboards map[keyboardState]tgbotapi.ReplyKeyboardMarkup
}

func NewKeyboardManager() *KeyboardManager {
	km := &KeyboardManager{
		keyboards: make(map[keyboardState]tgbotapi.ReplyKeyboardMarkup),
	}

	km.keyboards[keyboardIdle] = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🧾 Emitir nota"),
			tgbotapi.NewKeyboardButton("📋 Histórico"),
		),
	)

	km.keyboards[keyboardInSession] = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📧 E-mail"),
			tgbotapi.NewKeyboardButton("💬 WhatsApp"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("❌ Cancelar"),
		),
	)

	for state := range km.keyboards {
		keyboard := km.keyboards[state]
		keyboard.ResizeKeyboard = true
		keyboard.OneTimeKeyboard = false
		km.keyboards[state] = keyboard
	}

	return km
}

func (km *KeyboardManager) GetKeyboard(state keyboardState) tgbotapi.ReplyKeyboardMarkup {
	if keyboard, exists := km.keyboards[state]; exists {
		return keyboard
	}

	return km.keyboards[keyboardIdle]
}

// ParseButtonCommand конвертирует текст кнопки в команду
func ParseButtonCommand(text string) string {
	buttonToCommand := map[string]string{
		"🧾 Emitir nota": "start",
		"📋 Histórico":   "historico",
		"📧 E-mail":      "email",
		"💬 WhatsApp":    "whatsapp",
		"❌ Cancelar":    "cancel",
	}

	if command, exists := buttonToCommand[text]; exists {
		return command
	}

	return ""
}
