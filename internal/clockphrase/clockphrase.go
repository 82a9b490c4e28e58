// Package clockphrase renders the current time or date as a spoken
// sentence ("It is quarter past 3 in the afternoon").
package clockphrase

import (
	"fmt"
	"strings"
	"time"
)

func ordinal(n int) string {
	if r := n % 100; r >= 10 && r <= 20 {
		return fmt.Sprintf("%dth", n)
	}
	switch n % 10 {
	case 1:
		return fmt.Sprintf("%dst", n)
	case 2:
		return fmt.Sprintf("%dnd", n)
	case 3:
		return fmt.Sprintf("%drd", n)
	}
	return fmt.Sprintf("%dth", n)
}

func periodOfDay(hour24 int) string {
	switch {
	case hour24 < 12:
		return "in the morning"
	case hour24 < 18:
		return "in the afternoon"
	default:
		return "in the evening"
	}
}

func spokenTime(now time.Time) string {
	h24 := now.Hour()
	h12 := h24 % 12
	if h12 == 0 {
		h12 = 12
	}
	m := now.Minute()

	switch m {
	case 15:
		return fmt.Sprintf("It is quarter past %d %s", h12, periodOfDay(h24))
	case 30:
		return fmt.Sprintf("It is half past %d %s", h12, periodOfDay(h24))
	case 45:
		return fmt.Sprintf("It is quarter to %d %s", (h12%12)+1, periodOfDay(h24))
	}
	return fmt.Sprintf("It is %d:%02d%s", h12, m, strings.ToLower(now.Format("PM")))
}

// Message answers a time-or-date question with the current clock.
func Message(query string) string {
	return MessageAt(query, time.Now())
}

// MessageAt is Message with an explicit clock, mostly for tests.
func MessageAt(query string, now time.Time) string {
	q := strings.ToLower(query)
	has := func(w string) bool { return strings.Contains(q, w) }

	switch {
	case has("time"):
		return spokenTime(now)
	case has("day") && has("month") && has("year"):
		return fmt.Sprintf("It is the %s of %s", ordinal(now.Day()), now.Format("January 2006"))
	case has("day") && has("month"):
		return fmt.Sprintf("It is the %s of %s", ordinal(now.Day()), now.Format("January"))
	case has("day") && has("year"):
		return fmt.Sprintf("It is the %s of %s", ordinal(now.Day()), now.Format("2006"))
	case has("day"):
		return fmt.Sprintf("It is the %s of %s", ordinal(now.Day()), now.Format("January"))
	case has("month") && has("year"):
		return fmt.Sprintf("It is %s", now.Format("January 2006"))
	case has("month"):
		return fmt.Sprintf("It is %s", now.Format("January"))
	case has("year"):
		return fmt.Sprintf("It is %s", now.Format("2006"))
	}
	return "I don't understand the request."
}
