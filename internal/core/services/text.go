package services

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	tokenPattern   = regexp.MustCompile(`[\p{L}\p{N}]+`)
	nonAlnumASCII  = regexp.MustCompile(`[^a-z0-9]+`)
	titleKeyWords  = 3
	titleKeyJoiner = "_"
)

// fold lowercases s and strips combining marks, so "Régimen" becomes "regimen".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// tokenize splits text into folded letter/digit tokens without stopwords.
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(fold(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// TitleKey derives the file name key of a catalog title: its first three
// alphanumeric words, folded and joined with underscores.
// "Reglamento de Régimen de Estudios" yields "reglamento_de_regimen".
func TitleKey(title string) string {
	words := strings.Fields(nonAlnumASCII.ReplaceAllString(fold(title), " "))
	if len(words) > titleKeyWords {
		words = words[:titleKeyWords]
	}
	return strings.Join(words, titleKeyJoiner)
}

// stopwords are folded Spanish and English function words.
var stopwords = func() map[string]struct{} {
	words := []string{
		// Spanish
		"a", "al", "ante", "con", "como", "cual", "cuando", "de", "del", "desde", "donde",
		"el", "ella", "en", "entre", "es", "esta", "este", "esto", "hay", "la", "las",
		"le", "les", "lo", "los", "mas", "me", "mi", "muy", "no", "o", "para", "pero",
		"por", "que", "se", "si", "sin", "sobre", "son", "su", "sus", "un", "una",
		"uno", "unos", "unas", "y", "ya", "yo",
		// English
		"an", "and", "are", "as", "at", "be", "by", "for", "from", "how", "i", "in",
		"is", "it", "of", "on", "or", "that", "the", "this", "to", "was", "what",
		"when", "where", "which", "who", "with",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
