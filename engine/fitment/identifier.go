package fitment

import (
	"fmt"
	"strings"
)

// batterySuffix marks the "BS" (bottle supplied) packaging variant of a
// battery. Catalog entries spell the same battery with and without it.
const batterySuffix = "-BS"

// batteryID holds the spellings a battery model identifier may appear under.
type batteryID struct {
	with     string // YTX14-BS
	without  string // YTX14
	stripped string // YTX14, separators removed
}

// parseBatteryID derives the canonical spellings of raw. ok is false for an
// empty identifier.
func parseBatteryID(raw string) (batteryID, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return batteryID{}, false
	}
	without := trimSuffix(s)
	if without == "" {
		return batteryID{}, false
	}
	return batteryID{
		with:     without + batterySuffix,
		without:  without,
		stripped: stripSeparators(without),
	}, true
}

// query is the text embedded for a vehicles-for-battery search.
func (b batteryID) query() string {
	return fmt.Sprintf("%s %s battery fits", b.with, b.without)
}

func (b batteryID) spellings() [3]string {
	return [3]string{b.with, b.without, b.stripped}
}

// matches reports whether a stored identifier names this battery: after the
// same normalization, it equals, contains, or is contained by one of the
// spellings.
func (b batteryID) matches(stored string) bool {
	s := strings.ToUpper(strings.TrimSpace(stored))
	if s == "" {
		return false
	}
	forms := [...]string{s, trimSuffix(s), stripSeparators(trimSuffix(s))}
	for _, f := range forms {
		if f == "" {
			continue
		}
		for _, sp := range b.spellings() {
			if f == sp || strings.Contains(f, sp) || strings.Contains(sp, f) {
				return true
			}
		}
	}
	return false
}

// canonicalBatteryID is the dedup key for battery identifiers.
func canonicalBatteryID(raw string) string {
	return stripSeparators(trimSuffix(strings.ToUpper(strings.TrimSpace(raw))))
}

func trimSuffix(s string) string {
	for _, suf := range []string{batterySuffix, " BS"} {
		if strings.HasSuffix(s, suf) {
			return strings.TrimSpace(s[:len(s)-len(suf)])
		}
	}
	return s
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '_', '.':
			return -1
		}
		return r
	}, s)
}
