package draftmodel

import (
	"errors"
	"fmt"
)

type FieldKey string

const (
	FieldService     FieldKey = "service"
	FieldClient      FieldKey = "client"
	FieldValue       FieldKey = "value"
	FieldHours       FieldKey = "hours"
	FieldDescription FieldKey = "description"
)

// Field связывает ключ черновика с вопросом, который его заполняет.
type Field struct {
	Key    FieldKey `json:"key" yaml:"key"`
	Prompt string   `json:"prompt" yaml:"prompt"`
}

// Schema - упорядоченный список вопросов и служебные реплики ассистента.
type Schema struct {
	Greeting   string  `json:"greeting" yaml:"greeting"`
	Summary    string  `json:"summary" yaml:"summary"`
	Success    string  `json:"success" yaml:"success"`
	Failure    string  `json:"failure" yaml:"failure"`
	Generating string  `json:"generating" yaml:"generating"`
	Fields     []Field `json:"fields" yaml:"fields"`
}

var ErrInvalidSchema = errors.New("invalid draft schema")

func DefaultSchema() Schema {
	return Schema{
		Greeting:   "Olá! Vou te ajudar a emitir sua nota fiscal.",
		Summary:    "Perfeito! Agora vou gerar sua nota fiscal com as informações fornecidas.",
		Success:    "✅ Nota fiscal gerada com sucesso! Você receberá o documento conforme suas preferências de notificação.",
		Failure:    "❌ Não foi possível gerar sua nota fiscal. Tente novamente mais tarde.",
		Generating: "Gerando sua nota fiscal...",
		Fields: []Field{
			{Key: FieldService, Prompt: "Qual serviço você prestou?"},
			{Key: FieldClient, Prompt: "Para qual cliente foi prestado o serviço?"},
			{Key: FieldValue, Prompt: "Qual o valor total do serviço?"},
			{Key: FieldHours, Prompt: "Quantas horas foram trabalhadas?"},
			{Key: FieldDescription, Prompt: "Gostaria de adicionar alguma descrição adicional?"},
		},
	}
}

func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalidSchema)
	}

	seen := make(map[FieldKey]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		if f.Key == "" {
			return fmt.Errorf("%w: field %d has empty key", ErrInvalidSchema, i)
		}
		if f.Prompt == "" {
			return fmt.Errorf("%w: field %q has empty prompt", ErrInvalidSchema, f.Key)
		}
		if _, ok := seen[f.Key]; ok {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Key)
		}
		seen[f.Key] = struct{}{}
	}

	return nil
}

// Opening - первое сообщение ассистента: приветствие и первый вопрос.
func (s Schema) Opening() string {
	if s.Greeting == "" {
		return s.Fields[0].Prompt
	}

	return s.Greeting + " " + s.Fields[0].Prompt
}

// Draft - заполняемый по шагам черновик. Отсутствующий ключ = поле не заполнено.
type Draft map[FieldKey]string

func (d Draft) Clone() Draft {
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}

	return out
}
