package codegen

import (
	"strings"
	"unicode"
)

// Language is the kind of output the interpreter is asked for.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Python     Language = "python"
	Bash       Language = "bash"
	Translate  Language = "translate"
)

// keywords map a spoken prefix to a language. Matching is case-insensitive
// and must end on a word boundary.
var keywords = []struct {
	word string
	lang Language
}{
	{"command", Bash},
	{"javascript", JavaScript},
	{"typescript", TypeScript},
	{"python", Python},
	{"translate", Translate},
}

// Detect returns the language requested by a leading keyword and the text
// with that keyword removed. Without a keyword it returns JavaScript and the
// trimmed text.
func Detect(text string) (Language, string) {
	text = strings.TrimSpace(text)
	for _, k := range keywords {
		if len(text) < len(k.word) || !strings.EqualFold(text[:len(k.word)], k.word) {
			continue
		}
		rest := text[len(k.word):]
		if rest != "" {
			r := []rune(rest)[0]
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				continue
			}
		}
		return k.lang, strings.TrimLeftFunc(strings.TrimSpace(rest), isSeparator)
	}
	return JavaScript, text
}

// isSeparator reports punctuation the transcriber puts after a keyword
// ("Python, print hello").
func isSeparator(r rune) bool {
	return r == ',' || r == ':' || r == '.' || unicode.IsSpace(r)
}
