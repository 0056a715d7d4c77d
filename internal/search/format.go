package search

import (
	"strings"

	"moviefinder/pkg/models"
)

// Format renders one movie as display lines. withOriginal appends the
// untranslated title in parentheses. The title line always carries a
// separator space after the title, so it reads "Título: X " without the
// suffix and "Título: X  (Original: Y)" with it.
func Format(title, overview models.TranslatedField, releaseDate string, withOriginal bool) string {
	var b strings.Builder
	b.WriteString("Título: ")
	b.WriteString(title.Translated)
	b.WriteString(" ")
	if withOriginal {
		b.WriteString(" (Original: ")
		b.WriteString(title.Original)
		b.WriteString(")")
	}
	b.WriteString("\nDescripción: ")
	b.WriteString(overview.Translated)
	b.WriteString("\nFecha de estreno: ")
	b.WriteString(releaseDate)
	b.WriteString("\n")
	return b.String()
}
