// Package titles turns a text-completion response into candidate movie titles.
package titles

import (
	"strings"

	"github.com/rs/zerolog"
)

const (
	envelopeStart = `response":"`
	envelopeEnd   = `"done":`
)

// Extractor parses a raw completion response into an ordered list of titles.
// Implementations never fail: unusable input yields an empty list.
type Extractor interface {
	Extract(raw string) []string
}

// EnvelopeExtractor handles both plain newline-delimited text and the raw
// JSON body of a non-streaming generate call. It cuts the body between
// `response":"` and `"done":` instead of decoding it, so a title containing
// `"done":` would be truncated there.
type EnvelopeExtractor struct {
	Log zerolog.Logger
}

func NewEnvelopeExtractor(log zerolog.Logger) *EnvelopeExtractor {
	return &EnvelopeExtractor{Log: log}
}

func (e *EnvelopeExtractor) Extract(raw string) (titles []string) {
	defer func() {
		if r := recover(); r != nil {
			e.Log.Error().Interface("panic", r).Msg("title extraction failed")
			titles = []string{}
		}
	}()

	text := unescape(raw)
	if _, rest, ok := strings.Cut(text, envelopeStart); ok {
		body, _, _ := strings.Cut(rest, envelopeEnd)
		// the envelope may have been escaped twice
		text = unescape(body)
	}

	titles = splitLines(text)
	e.Log.Info().Strs("titles", titles).Msg("titles extracted")
	return titles
}

func unescape(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	return strings.ReplaceAll(s, `\u0026`, "&")
}

func splitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
