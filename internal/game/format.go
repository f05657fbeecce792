package game

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatName turns a raw catalog name into a display label: the first letter
// is upper-cased and the hyphens after it become spaces ("mr-mime" -> "Mr mime").
func FormatName(name string) string {
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	// Casers carry state, so each call gets its own.
	return cases.Upper(language.Und).String(string(r)) + strings.ReplaceAll(name[size:], "-", " ")
}
