// Package texto folds names for case and accent insensitive matching.
package texto

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizar lowercases s, strips diacritics and collapses whitespace.
// "  Azúcar  MASCABO " -> "azucar mascabo"
func Normalizar(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plano, _, err := transform.String(t, s)
	if err != nil {
		plano = s
	}
	return strings.Join(strings.Fields(strings.ToLower(plano)), " ")
}

// Tokens splits a normalized query into its whitespace separated terms.
func Tokens(consulta string) []string {
	return strings.Fields(Normalizar(consulta))
}

// Coincide reports whether every token of consulta appears as a substring
// of the normalized nombre. An empty query matches everything.
func Coincide(nombre, consulta string) bool {
	n := Normalizar(nombre)
	for _, tok := range Tokens(consulta) {
		if !strings.Contains(n, tok) {
			return false
		}
	}
	return true
}
