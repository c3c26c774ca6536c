package messagemodel

// Message - одно сообщение диалога. После создания не изменяется.
type Message struct {
	Id              string `json:"id"`
	Text            string `json:"text"`
	IsFromAssistant bool   `json:"is_from_assistant"`
}
