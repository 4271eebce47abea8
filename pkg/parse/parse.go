package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reHours     = regexp.MustCompile(`(\d+)h`)
	reMinutes   = regexp.MustCompile(`(\d+)m(?:in)?\b`)
	reSeconds   = regexp.MustCompile(`(\d+)s`)
	reClockMins = regexp.MustCompile(`(\d+)min`)
)

func blank(v string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == "-"
}

// Dollar parses currency strings like "$1,234.56". Blank values and the
// export's "-" placeholder resolve to zero rather than an error.
func Dollar(v string) decimal.Decimal {
	if blank(v) {
		return decimal.Zero
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(v), "$", ""), ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Percent parses percentage strings like "12.5%". Blank resolves to zero.
func Percent(v string) float64 {
	if blank(v) {
		return 0
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(v), "%", ""), ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}

// Int parses integer counts, tolerating thousands separators and trailing
// decimals some exports carry. Blank or unparseable resolves to zero.
func Int(v string) int {
	if blank(v) {
		return 0
	}
	cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if idx := strings.IndexByte(cleaned, '.'); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return n
}

// Float parses plain numeric strings. Blank resolves to zero.
func Float(v string) float64 {
	if blank(v) {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

// ReplySeconds parses reply/response durations like "1h 2m 3s" into
// seconds. Returns nil for blank or unrecognised values; a latency that
// was never observed must stay distinguishable from a zero latency.
func ReplySeconds(v string) *float64 {
	if blank(v) {
		return nil
	}
	total := 0
	matched := false
	if m := reHours.FindStringSubmatch(v); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n * 3600
		matched = true
	}
	if m := reMinutes.FindStringSubmatch(v); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n * 60
		matched = true
	}
	if m := reSeconds.FindStringSubmatch(v); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n
		matched = true
	}
	if !matched {
		return nil
	}
	f := float64(total)
	return &f
}

// ClockedMinutes parses tracked-hours strings like "7h 3min" or "0min"
// into whole minutes. Blank resolves to zero.
func ClockedMinutes(v string) int {
	if blank(v) || strings.TrimSpace(v) == "0min" {
		return 0
	}
	total := 0
	if m := reHours.FindStringSubmatch(v); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n * 60
	}
	if m := reClockMins.FindStringSubmatch(v); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n
	}
	return total
}

// YesNo parses the export's "Yes"/"No" flags, case-insensitively.
func YesNo(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "yes")
}

// Hour extracts the hour component from a "HH:MM" or "HH:MM:SS" time
// string. Returns nil when no hour can be determined.
func Hour(v string) *int {
	trimmed := strings.TrimSpace(v)
	idx := strings.IndexByte(trimmed, ':')
	if idx <= 0 {
		return nil
	}
	h, err := strconv.Atoi(trimmed[:idx])
	if err != nil || h < 0 || h > 23 {
		return nil
	}
	return &h
}

// FormatSeconds renders a duration in the export's "1h 2m 3s" style.
// Nil and zero both render as "N/A"; the dashboards treat an absent
// latency and a zero-length latency the same way.
func FormatSeconds(seconds *float64) string {
	if seconds == nil || *seconds != *seconds || *seconds == 0 {
		return "N/A"
	}
	secs := int(*seconds)
	if secs == 0 {
		return "0s"
	}
	m := secs / 60
	s := secs % 60
	h := m / 60
	m = m % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}

// FormatClockedMinutes renders tracked minutes as "7h 3m", or "N/A" for
// zero (an operator with no tracked time).
func FormatClockedMinutes(minutes int) string {
	if minutes <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
