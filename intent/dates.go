package intent

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// datePattern matches day/month/year tokens with ".", "/" or "-" separators.
var datePattern = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})`)

// numericMonthPattern matches bare month/year tokens like "2/25" or "02/2025".
// Full dates are stripped from the text before this pattern is applied.
var numericMonthPattern = regexp.MustCompile(`(\d{1,2})[./](\d{2}|\d{4})`)

// yearPattern finds the year token following a month name, e.g. "פברואר 25".
var yearPattern = regexp.MustCompile(`\d{2,4}`)

// monthNames maps Hebrew and English month names, plus common misspellings,
// to their month number. Misspellings come from real user traffic; every
// month carries at least one.
var monthNames = map[string]time.Month{
	// Hebrew
	"ינואר": time.January, "פברואר": time.February, "מרץ": time.March,
	"אפריל": time.April, "מאי": time.May, "יוני": time.June,
	"יולי": time.July, "אוגוסט": time.August, "ספטמבר": time.September,
	"אוקטובר": time.October, "נובמבר": time.November, "דצמבר": time.December,
	// Hebrew variants and misspellings
	"ינאור": time.January, "פבואר": time.February, "פבאור": time.February,
	"מרס": time.March, "מארס": time.March, "אפרל": time.April,
	"מאיי": time.May, "יונני": time.June, "יולו": time.July,
	"אוגסט": time.August, "ספטמר": time.September, "אוקטבר": time.October,
	"נובמר": time.November, "דצמר": time.December,
	// English
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
	// English misspellings
	"janurary": time.January, "febuary": time.February, "marhc": time.March,
	"apirl": time.April, "mayy": time.May, "jnue": time.June,
	"jully": time.July, "agust": time.August, "septmber": time.September,
	"octber": time.October, "novmber": time.November, "decmber": time.December,
}

// monthNamePattern is a single alternation over all known month spellings,
// longest-first so longer names are never shadowed by their prefixes.
var monthNamePattern = buildMonthNamePattern()

func buildMonthNamePattern() *regexp.Regexp {
	names := make([]string, 0, len(monthNames))
	for name := range monthNames {
		quoted := regexp.QuoteMeta(name)
		if name[0] < 0x80 {
			// ASCII word boundaries keep "may" from matching inside "maybe".
			// Hebrew names cannot use \b (non-ASCII is never a word char here).
			quoted = `\b` + quoted + `\b`
		}
		names = append(names, quoted)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	return regexp.MustCompile("(?i)(" + strings.Join(names, "|") + ")")
}

// expandYear applies the century pivot for 2-digit years: values below 80 are
// read as 2000s, the rest as 1900s. The 80 threshold is a fixed policy choice
// carried over from the first production rollout.
func expandYear(year int) int {
	if year >= 100 {
		return year
	}
	if year < 80 {
		return 2000 + year
	}
	return 1900 + year
}

// parseDate parses the first day/month/year token in s. Returns false for
// tokens that do not form a real calendar date (e.g. 31/2/2025).
func parseDate(s string) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	year = expandYear(year)
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != time.Month(month) || d.Year() != year {
		return time.Time{}, false
	}
	return d, true
}

// findDates returns every valid date token in text, in order of appearance.
func findDates(text string) []time.Time {
	var dates []time.Time
	for _, m := range datePattern.FindAllString(text, -1) {
		if d, ok := parseDate(m); ok {
			dates = append(dates, d)
		}
	}
	return dates
}

// orderedRange normalizes two dates so start <= end.
func orderedRange(a, b time.Time) (time.Time, time.Time) {
	if a.After(b) {
		return b, a
	}
	return a, b
}

// extractMonthYears pulls every month/year pair from text in order of
// appearance. Named months take their year from the first 2- or 4-digit
// number that follows the name (before the next month name), defaulting to
// the current year of the injected clock when none is present. Bare numeric
// pairs like "2/25" are also recognized once full dates have been stripped.
func extractMonthYears(text string, now time.Time) []MonthYear {
	type hit struct {
		pos   int
		pair  MonthYear
	}
	var hits []hit

	// Full dates would otherwise be misread as numeric month/year pairs.
	stripped := datePattern.ReplaceAllString(text, " ")

	nameLocs := monthNamePattern.FindAllStringIndex(stripped, -1)
	for i, loc := range nameLocs {
		name := strings.ToLower(stripped[loc[0]:loc[1]])
		month, ok := monthNames[name]
		if !ok {
			continue
		}
		windowEnd := len(stripped)
		if i+1 < len(nameLocs) {
			windowEnd = nameLocs[i+1][0]
		}
		year := now.Year()
		if y := yearPattern.FindString(stripped[loc[1]:windowEnd]); y != "" {
			n, _ := strconv.Atoi(y)
			year = expandYear(n)
		}
		hits = append(hits, hit{pos: loc[0], pair: MonthYear{Month: int(month), Year: year}})
	}

	// Numeric pairs, skipping regions already claimed by a named month.
	for _, loc := range numericMonthPattern.FindAllStringSubmatchIndex(stripped, -1) {
		claimed := false
		for _, h := range hits {
			if loc[0] >= h.pos && loc[0] < h.pos+16 {
				claimed = true
				break
			}
		}
		if claimed {
			continue
		}
		month, _ := strconv.Atoi(stripped[loc[2]:loc[3]])
		if month < 1 || month > 12 {
			continue
		}
		year, _ := strconv.Atoi(stripped[loc[4]:loc[5]])
		hits = append(hits, hit{pos: loc[0], pair: MonthYear{Month: month, Year: expandYear(year)}})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	pairs := make([]MonthYear, 0, len(hits))
	for _, h := range hits {
		pairs = append(pairs, h.pair)
	}
	return pairs
}
