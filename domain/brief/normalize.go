package brief

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	quoteReplacer = strings.NewReplacer(
		`"`, "",
		`'`, "",
		"\u201c", "",
		"\u201d", "",
		"\u2018", "",
		"\u2019", "",
	)
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	relativeTimePattern  = regexp.MustCompile(`(?i)(\d+)\s*([mhd])\s+ago`)
)

// Normalize cleans scraped anchor text and infers its publish time.
//
// Quotes and parenthetical asides are removed, a relative-time marker such
// as "5h ago" is converted to now minus that duration and dropped, a leading
// all-caps ticker glued to the first word is cut, and whitespace is collapsed.
// Without a marker the publish time is now. The returned time is UTC.
func Normalize(raw string, now time.Time) (string, time.Time) {
	text := quoteReplacer.Replace(raw)
	text = parentheticalPattern.ReplaceAllString(text, "")

	published := now
	if matches := relativeTimePattern.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		last := matches[len(matches)-1]
		if age, ok := relativeAge(last[1], last[2]); ok {
			published = now.Add(-age)
		}
		text = relativeTimePattern.ReplaceAllString(text, " ")
	}

	text = stripTicker(text)
	text = strings.Join(strings.Fields(text), " ")

	return text, published.UTC()
}

// relativeAge converts a relative time marker into a duration. Amounts too
// large for a time.Duration are not treated as a marker.
func relativeAge(amount, unit string) (time.Duration, bool) {
	n, err := strconv.ParseInt(amount, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	var step time.Duration
	switch strings.ToLower(unit) {
	case "m":
		step = time.Minute
	case "h":
		step = time.Hour
	case "d":
		step = 24 * time.Hour
	default:
		return 0, false
	}
	if n > int64(math.MaxInt64/step) {
		return 0, false
	}
	return time.Duration(n) * step, true
}

// stripTicker slices from one rune before the first lowercase letter, so
// "AAPLApple shares" becomes "Apple shares". Text whose first rune is
// lowercase, or that has no lowercase letter, is returned unchanged.
func stripTicker(text string) string {
	runes := []rune(text)
	for i, r := range runes {
		if unicode.IsLower(r) {
			if i == 0 {
				return text
			}
			return string(runes[i-1:])
		}
	}
	return text
}
