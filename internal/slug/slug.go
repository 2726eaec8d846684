// Package slug derives URL slugs from human titles.
package slug

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps generated slugs before any collision suffix is added.
const MaxLength = 80

const fallback = "item"

// Make folds accents, lowercases and joins alphanumeric runs with single hyphens.
// "¡Nueva Actualización: Cuevas y Acantilados!" becomes "nueva-actualizacion-cuevas-y-acantilados".
func Make(title string) string {
	folded := Fold(title)

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
		if b.Len() >= MaxLength {
			break
		}
	}

	out := strings.Trim(b.String(), "-")
	if len(out) > MaxLength {
		out = strings.TrimRight(out[:MaxLength], "-")
	}
	if out == "" {
		return fallback
	}
	return out
}

// Fold strips combining marks, so "Daño" becomes "Dano". Case is preserved.
func Fold(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		return s
	}
	return folded
}

// Unique returns base, or base-2, base-3 and so on, whichever taken reports as free.
func Unique(base string, taken func(candidate string) (bool, error)) (string, error) {
	candidate := base
	for n := 2; n < 1000; n++ {
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", fmt.Errorf("no free slug for %q", base)
}
