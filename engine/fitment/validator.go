package fitment

import (
	"strings"

	"github.com/WessleyAI/wessley-fitment/pkg/vehiclenlp"
)

// Validate scores how well a catalog vehicle (make, model, year) agrees
// lexically with a normalized query. It is pure: the same inputs always
// give the same result. The score is in [0,1]; valid means it reached
// ValidityThreshold.
func Validate(make_, model, year string, q vehiclenlp.Query) (bool, float64) {
	score := modelScore(model, q.ModelTerms) + makeScore(make_, q.Make)
	if q.Year != "" && strings.TrimSpace(year) == q.Year {
		score += YearWeight
	}

	if q.Ambiguous() {
		if s := allTermsScore(make_+" "+model, q.AllTerms); s > score {
			score = s
		}
	}

	score = clamp01(score)
	return score >= ValidityThreshold, score
}

// modelScore averages per-term credit over the query's model terms.
func modelScore(model string, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	tokens := splitModel(model)
	text := strings.Join(tokens, " ")

	var total float64
	for _, t := range terms {
		total += termCredit(t, tokens, text)
	}
	return total / float64(len(terms)) * ModelWeight
}

func termCredit(term string, tokens []string, text string) float64 {
	for _, tok := range tokens {
		if tok == term {
			return 1
		}
	}
	// "100" must not match inside "gl1000".
	if isDigits(term) {
		return 0
	}
	if strings.Contains(text, term) {
		return 1
	}
	for _, tok := range tokens {
		if len(tok) >= 2 && strings.Contains(term, tok) {
			return PartialTermCredit
		}
	}
	return 0
}

func makeScore(recordMake, queryMake string) float64 {
	rm := normalizeMake(recordMake)
	qm := normalizeMake(queryMake)
	if rm == "" || qm == "" {
		return 0
	}
	if strings.Contains(rm, qm) || strings.Contains(qm, rm) {
		return MakeWeight
	}
	rw, qw := strings.Fields(rm), strings.Fields(qm)
	if (len(rw) > 1 || len(qw) > 1) && rw[0] == qw[0] {
		return MakePartialWeight
	}
	return 0
}

// allTermsScore is the share of terms found anywhere in text, scaled by
// AllTermsWeight.
func allTermsScore(text string, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	haystack := strings.Join(splitModel(text), " ")
	found := 0
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			found++
		}
	}
	return float64(found) / float64(len(terms)) * AllTermsWeight
}

// splitModel lowercases s and splits it on whitespace, '/' and '-'.
func splitModel(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '/' || r == '-'
	})
}

func normalizeMake(s string) string {
	return strings.Join(splitModel(s), " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
