package instagram

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EventDetails is what the parser recovers from a flyer's OCR text. Every
// field has a fallback so the pipeline can always build a record; FullText is
// kept verbatim as the description of last resort.
type EventDetails struct {
	Title       string
	Date        *time.Time
	EndDate     *time.Time
	Time        string
	EndTime     string
	Location    string
	Description string
	FullText    string
}

const untitledEvent = "Untitled Event"

// Parser applies an ordered regex cascade to OCR text. Rules are kept as data
// so each one can be exercised on its own.
type Parser struct {
	DefaultLocation string
	Now             func() time.Time
}

func NewParser(defaultLocation string) *Parser {
	return &Parser{
		DefaultLocation: defaultLocation,
		Now:             time.Now,
	}
}

const monthNames = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var (
	titleDateRe = regexp.MustCompile(`\d{1,2}[/\-.]\d{1,2}`)
	titleTimeRe = regexp.MustCompile(`\d{1,2}:\d{2}`)
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	locationRe  = map[string]*regexp.Regexp{
		"suydam": regexp.MustCompile(`(?i)(\d+\s+)?suydam`),
		"bogart": regexp.MustCompile(`(?i)(\d+\s+)?bogart`),
	}
)

// dateRule pairs a pattern with its extractor. Rules run in priority order,
// first valid date wins.
type dateRule struct {
	re      *regexp.Regexp
	extract func(m []string, now time.Time) (time.Time, bool)
}

// dateRangeRule matches a span of days. Range rules run before the single-date
// families so "March 13-15" yields both ends instead of just the 13th.
type dateRangeRule struct {
	re      *regexp.Regexp
	extract func(m []string, now time.Time) (time.Time, time.Time, bool)
}

var dateRangeRules = []dateRangeRule{
	// "Jan 30 - Feb 2" / "Jan 30 - Feb 2, 2026"
	{
		re: regexp.MustCompile(`(?i)` + monthNames + `\s+(\d{1,2})(?:st|nd|rd|th)?\s*[-–]\s*` + monthNames + `\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?`),
		extract: func(m []string, now time.Time) (time.Time, time.Time, bool) {
			startMonth, ok1 := monthFromName(m[1])
			endMonth, ok2 := monthFromName(m[3])
			if !ok1 || !ok2 {
				return time.Time{}, time.Time{}, false
			}
			startDay, _ := strconv.Atoi(m[2])
			endDay, _ := strconv.Atoi(m[4])
			year := now.Year()
			if m[5] != "" {
				year, _ = strconv.Atoi(m[5])
			}
			start, ok := buildDate(year, startMonth, startDay)
			if !ok {
				return time.Time{}, time.Time{}, false
			}
			endYear := year
			if endMonth < startMonth {
				// "Dec 30 - Jan 2" wraps into the next year
				endYear++
			}
			end, ok := buildDate(endYear, endMonth, endDay)
			if !ok || !end.After(start) {
				return time.Time{}, time.Time{}, false
			}
			return start, end, true
		},
	},
	// "March 13-15" / "March 13-15, 2026"
	{
		re: regexp.MustCompile(`(?i)` + monthNames + `\s+(\d{1,2})(?:st|nd|rd|th)?\s*[-–]\s*(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?`),
		extract: func(m []string, now time.Time) (time.Time, time.Time, bool) {
			month, ok := monthFromName(m[1])
			if !ok {
				return time.Time{}, time.Time{}, false
			}
			startDay, _ := strconv.Atoi(m[2])
			endDay, _ := strconv.Atoi(m[3])
			year := now.Year()
			if m[4] != "" {
				year, _ = strconv.Atoi(m[4])
			}
			start, ok := buildDate(year, month, startDay)
			if !ok {
				return time.Time{}, time.Time{}, false
			}
			end, ok := buildDate(year, month, endDay)
			if !ok || !end.After(start) {
				return time.Time{}, time.Time{}, false
			}
			return start, end, true
		},
	},
}

var dateRules = []dateRule{
	// "January 15, 2026" / "Jan 15 2026"
	{
		re: regexp.MustCompile(`(?i)` + monthNames + `\s+(\d{1,2}),?\s+(\d{4})`),
		extract: func(m []string, _ time.Time) (time.Time, bool) {
			month, ok := monthFromName(m[1])
			if !ok {
				return time.Time{}, false
			}
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			return buildDate(year, month, day)
		},
	},
	// "1/15/2026" / "1-15-2026"
	{
		re: regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})`),
		extract: func(m []string, _ time.Time) (time.Time, bool) {
			month, _ := strconv.Atoi(m[1])
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			if month < 1 || month > 12 {
				return time.Time{}, false
			}
			return buildDate(year, time.Month(month), day)
		},
	},
	// "15th of January", no year, assume the current one
	{
		re: regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)\s+(?:of\s+)?` + monthNames),
		extract: func(m []string, now time.Time) (time.Time, bool) {
			day, _ := strconv.Atoi(m[1])
			month, ok := monthFromName(m[2])
			if !ok {
				return time.Time{}, false
			}
			return buildDate(now.Year(), month, day)
		},
	},
	// "Jan 15th" / "March 13", no year, assume the current one
	{
		re: regexp.MustCompile(`(?i)` + monthNames + `\s+(\d{1,2})(?:st|nd|rd|th)?`),
		extract: func(m []string, now time.Time) (time.Time, bool) {
			month, ok := monthFromName(m[1])
			if !ok {
				return time.Time{}, false
			}
			day, _ := strconv.Atoi(m[2])
			return buildDate(now.Year(), month, day)
		},
	},
	// "Saturday, Jan 15" weekday form, no year
	{
		re: regexp.MustCompile(`(?i)(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday),?\s+` + monthNames + `\s+(\d{1,2})`),
		extract: func(m []string, now time.Time) (time.Time, bool) {
			month, ok := monthFromName(m[1])
			if !ok {
				return time.Time{}, false
			}
			day, _ := strconv.Atoi(m[2])
			return buildDate(now.Year(), month, day)
		},
	},
}

// timeRule extracts a time-of-day string, plus the end of a range when the
// flyer gives one. The range rule comes first so "7-9:30PM" yields the start
// of the range as the event time rather than its end.
type timeRule struct {
	re      *regexp.Regexp
	extract func(m []string) (start, end string)
}

var timeRules = []timeRule{
	// "7-9:30PM" / "7:30-10pm": start hour inherits the trailing meridiem
	{
		re: regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*[-–]\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)`),
		extract: func(m []string) (string, string) {
			meridiem := strings.ToLower(m[5])
			start := m[1] + meridiem
			if m[2] != "" {
				start = fmt.Sprintf("%s:%s%s", m[1], m[2], meridiem)
			}
			end := m[3] + meridiem
			if m[4] != "" {
				end = fmt.Sprintf("%s:%s%s", m[3], m[4], meridiem)
			}
			return start, end
		},
	},
	// "7:00pm"
	{
		re:      regexp.MustCompile(`(?i)\d{1,2}:\d{2}\s*(?:am|pm)`),
		extract: func(m []string) (string, string) { return m[0], "" },
	},
	// "7pm"
	{
		re:      regexp.MustCompile(`(?i)\d{1,2}\s*(?:am|pm)`),
		extract: func(m []string) (string, string) { return m[0], "" },
	},
	// "19:00"
	{
		re:      regexp.MustCompile(`\d{2}:\d{2}`),
		extract: func(m []string) (string, string) { return m[0], "" },
	},
}

var clockRe = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)

// ParseEventDetails runs the cascade over raw OCR text. It never fails: every
// field falls back rather than erroring so a best-effort record can always be
// written.
func (p *Parser) ParseEventDetails(text string) EventDetails {
	lines := splitLines(text)

	title := untitledEvent
	if len(lines) > 0 {
		title = lines[0]
		for _, line := range lines {
			if len(line) > 3 && len(line) < 100 &&
				!titleDateRe.MatchString(line) &&
				!titleTimeRe.MatchString(line) {
				title = line
				break
			}
		}
	}

	date, endDate := p.extractDates(text)
	timeStr, endTime := extractTime(text)

	details := EventDetails{
		Title:       title,
		Date:        date,
		EndDate:     endDate,
		Time:        timeStr,
		EndTime:     endTime,
		Location:    p.extractLocation(text),
		Description: buildDescription(lines, title, text),
		FullText:    text,
	}
	return details
}

func (p *Parser) extractDates(text string) (date, endDate *time.Time) {
	now := p.Now()
	for _, rule := range dateRangeRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if start, end, ok := rule.extract(m, now); ok {
			return &start, &end
		}
		// malformed range ("Feb 28-30"), let the single-date families try
	}
	for _, rule := range dateRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if d, ok := rule.extract(m, now); ok {
			return &d, nil
		}
		// malformed match, fall through to the next family
	}
	return nil, nil
}

func extractTime(text string) (start, end string) {
	for _, rule := range timeRules {
		if m := rule.re.FindStringSubmatch(text); m != nil {
			return rule.extract(m)
		}
	}
	return "", ""
}

func (p *Parser) extractLocation(text string) string {
	for _, tag := range []string{"suydam", "bogart"} {
		if locationRe[tag].MatchString(text) {
			return tag
		}
	}
	return p.DefaultLocation
}

func buildDescription(lines []string, title, fullText string) string {
	var kept []string
	for _, line := range lines {
		if line == title {
			continue
		}
		if len(line) > 10 || lowercaseRe.MatchString(line) {
			kept = append(kept, line)
		}
	}
	desc := truncate(strings.Join(kept, " "), 500)
	if desc == "" {
		desc = truncate(fullText, 500)
	}
	return desc
}

// CombineDateAndTime folds an extracted time-of-day into an extracted date.
// No date at all means "now": the pipeline must always produce a timestamp.
func (p *Parser) CombineDateAndTime(date *time.Time, timeStr string) time.Time {
	if date == nil {
		return p.Now()
	}
	if timeStr == "" {
		return *date
	}

	m := clockRe.FindStringSubmatch(timeStr)
	if m == nil {
		return *date
	}

	hours, _ := strconv.Atoi(m[1])
	minutes := 0
	if m[2] != "" {
		minutes, _ = strconv.Atoi(m[2])
	}
	switch strings.ToLower(m[3]) {
	case "pm":
		if hours < 12 {
			hours += 12
		}
	case "am":
		if hours == 12 {
			hours = 0
		}
	}

	d := *date
	return time.Date(d.Year(), d.Month(), d.Day(), hours, minutes, 0, 0, d.Location())
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func monthFromName(name string) (time.Month, bool) {
	if len(name) < 3 {
		return 0, false
	}
	switch strings.ToLower(name[:3]) {
	case "jan":
		return time.January, true
	case "feb":
		return time.February, true
	case "mar":
		return time.March, true
	case "apr":
		return time.April, true
	case "may":
		return time.May, true
	case "jun":
		return time.June, true
	case "jul":
		return time.July, true
	case "aug":
		return time.August, true
	case "sep":
		return time.September, true
	case "oct":
		return time.October, true
	case "nov":
		return time.November, true
	case "dec":
		return time.December, true
	}
	return 0, false
}

// buildDate rejects day overflow ("February 30") instead of letting time.Date
// normalize it into March.
func buildDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
