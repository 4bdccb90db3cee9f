// Package vehiclenlp turns free-text vehicle descriptions ("2020 Honda CBR600
// motorcycle") into structured year / make / model terms. No external dependencies.
package vehiclenlp

import (
	"regexp"
	"strings"
	"unicode"
)

// Query is a normalized vehicle description. Empty Year or Make means none
// was found. Query values are never mutated after Normalize returns them.
type Query struct {
	Original   string   `json:"original"`
	Year       string   `json:"year,omitempty"`
	Make       string   `json:"make,omitempty"`
	ModelTerms []string `json:"model_terms"`
	// AllTerms are the significant tokens in order, make tokens included.
	AllTerms []string `json:"all_terms"`
}

// Ambiguous reports whether neither a make nor any model term was extracted.
func (q Query) Ambiguous() bool {
	return q.Make == "" && len(q.ModelTerms) == 0
}

// yearRe only accepts a year bounded by the separators tokenize splits on,
// so "2020.5" or "gl1800" carry no year.
var yearRe = regexp.MustCompile(`(?:^|[\s,/-])((?:19|20)\d{2})(?:$|[\s,/-])`)

// Normalize parses a raw query. It never fails; empty input gives an empty Query.
func Normalize(raw string) Query {
	q := Query{Original: raw, ModelTerms: []string{}, AllTerms: []string{}}
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return q
	}

	if loc := yearRe.FindStringSubmatchIndex(text); loc != nil {
		q.Year = text[loc[2]:loc[3]]
		text = text[:loc[2]] + " " + text[loc[3]:]
	}

	tokens := dropStopWords(tokenize(text))
	q.AllTerms = append(q.AllTerms, tokens...)

	make_, n := matchMake(tokens)
	q.Make = make_
	q.ModelTerms = append(q.ModelTerms, tokens[n:]...)
	return q
}

// tokenize splits on whitespace, hyphens, slashes, and commas.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '/' || r == ','
	})
}

func dropStopWords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if n := stopPhraseAt(tokens, i); n > 0 {
			i += n
			continue
		}
		if !stopWords[tokens[i]] {
			out = append(out, tokens[i])
		}
		i++
	}
	return out
}

func stopPhraseAt(tokens []string, i int) int {
next:
	for _, phrase := range stopPhrases {
		if i+len(phrase) > len(tokens) {
			continue
		}
		for j, w := range phrase {
			if tokens[i+j] != w {
				continue next
			}
		}
		return len(phrase)
	}
	return 0
}

// matchMake checks the first two tokens, then the first token, against the
// manufacturer directory. It returns the canonical make and how many tokens it used.
func matchMake(tokens []string) (string, int) {
	if len(tokens) >= 2 {
		if m, ok := makeAliases[tokens[0]+" "+tokens[1]]; ok {
			return m, 2
		}
	}
	if len(tokens) >= 1 {
		if m, ok := makeAliases[tokens[0]]; ok {
			return m, 1
		}
	}
	return "", 0
}
