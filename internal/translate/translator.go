package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"moviefinder/internal/completion"
)

const (
	DefaultLanguage = "es"
	DefaultModel    = "llama3"
)

const promptTemplate = "Traduce el siguiente texto al %s: '%s'. " +
	"Sin realizar opiniones ni ofrecer contexto. " +
	"Traduce de forma directa sin escribir nada mas."

type Translator struct {
	LLM   completion.Generator
	Model string
	Log   zerolog.Logger
}

func NewTranslator(llm completion.Generator, model string, log zerolog.Logger) *Translator {
	if model == "" {
		model = DefaultModel
	}
	return &Translator{
		LLM:   llm,
		Model: model,
		Log:   log.With().Str("component", "translate").Logger(),
	}
}

// Translate returns text translated to lang using model. Any failure is
// logged and the original text is returned instead. Empty lang and model
// fall back to the defaults.
func (t *Translator) Translate(ctx context.Context, text, lang, model string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if lang == "" {
		lang = DefaultLanguage
	}
	if model == "" {
		model = t.Model
	}

	out, err := t.LLM.Generate(ctx, model, Prompt(text, lang))
	if err != nil {
		t.Log.Error().Err(err).Str("lang", lang).Str("text", text).Msg("translation failed")
		return text
	}

	t.Log.Debug().Str("lang", lang).Str("translated", out).Msg("text translated")
	return out
}

// Prompt builds the instruction sent to the model.
func Prompt(text, lang string) string {
	return fmt.Sprintf(promptTemplate, lang, text)
}
