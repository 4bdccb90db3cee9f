package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Injection patterns: SQL/NoSQL/Cypher fragments that never belong in a vehicle description.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(DROP|DELETE|INSERT|UPDATE|ALTER|EXEC|UNION|DETACH)\b.*\b(TABLE|FROM|INTO|SELECT|SET|MATCH)\b`),
	regexp.MustCompile(`(?i)(--|;)\s*(DROP|DELETE|SELECT|MATCH)`),
	regexp.MustCompile(`(?i)\$\{.*\}`),            // template injection
	regexp.MustCompile(`(?i)\{\s*"\$[a-z]+"\s*:`), // NoSQL operator injection
}

// Battery identifiers are short alphanumerics with a few separators, e.g. "YTX14-BS".
var batteryModelRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._/()+-]*$`)

const (
	maxQueryLength        = 256
	maxBatteryModelLength = 40
)

// ValidateFitmentQuery gates free-text vehicle descriptions at the transport
// edge. An empty query is legal and simply resolves to nothing.
func ValidateFitmentQuery(text string) error {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > maxQueryLength {
		return NewValidationError("query", truncate(text, 32), ErrQueryTooLong)
	}
	for _, pat := range injectionPatterns {
		if pat.MatchString(text) {
			return NewValidationError("query", text, ErrQueryInjection)
		}
	}
	return nil
}

// ValidateBatteryModel gates battery identifiers at the transport edge.
func ValidateBatteryModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return NewValidationError("battery_model", model, ErrInvalidBatteryModel)
	}
	if utf8.RuneCountInString(model) > maxBatteryModelLength {
		return NewValidationError("battery_model", truncate(model, 32), ErrQueryTooLong)
	}
	if !batteryModelRe.MatchString(model) {
		return NewValidationError("battery_model", model, ErrInvalidBatteryModel)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
