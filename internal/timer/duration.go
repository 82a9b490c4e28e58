package timer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var onesWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11,
	"twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"a": 1, "an": 1,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var (
	secTypoRe  = regexp.MustCompile(`\bsec(?:nd)?s?\b`)
	minTypoRe  = regexp.MustCompile(`\bmins?\b`)
	hourTypoRe = regexp.MustCompile(`\bhrs?\b`)

	segmentRe = regexp.MustCompile(`(?i)(\d+|(?:a|an|zero|one|two|three|four|five|six|seven|eight|nine|ten|` +
		`eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|` +
		`twenty|thirty|forty|fifty|sixty|seventy|eighty|ninety)(?:[-\s](?:one|two|three|four|five|six|seven|eight|nine))?(?:\s+hundred)?)` +
		`\s*(hours?|hrs?|h|minutes?|mins?|m|seconds?|secs?|s)\b`)
)

func wordsToInt(s string) (int, bool) {
	s = strings.ReplaceAll(s, "-", " ")
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return 0, false
	}
	total := 0
	i := 0
	for i < len(parts) {
		w := parts[i]
		if v, ok := onesWords[w]; ok {
			total += v
			i++
			continue
		}
		if v, ok := tensWords[w]; ok {
			i++
			if i < len(parts) {
				if u, ok := onesWords[parts[i]]; ok && u < 10 {
					v += u
					i++
				}
			}
			total += v
			continue
		}
		if w == "hundred" {
			if total < 1 {
				total = 1
			}
			total *= 100
			i++
			continue
		}
		return 0, false
	}
	return total, true
}

// ParseDuration extracts a spoken duration such as "two hours fifteen
// minutes" or "90s" from free text. It tolerates common transcription
// shorthand (hrs, mins, secs). The second return is false when no
// duration could be read.
func ParseDuration(text string) (time.Duration, bool) {
	t := strings.ToLower(text)
	t = secTypoRe.ReplaceAllString(t, "seconds")
	t = minTypoRe.ReplaceAllString(t, "minutes")
	t = hourTypoRe.ReplaceAllString(t, "hours")

	var hours, minutes, seconds int
	for _, m := range segmentRe.FindAllStringSubmatch(t, -1) {
		rawNum := strings.ToLower(m[1])
		unit := strings.ToLower(m[2])

		var num int
		if n, err := strconv.Atoi(rawNum); err == nil {
			num = n
		} else {
			n, ok := wordsToInt(rawNum)
			if !ok {
				continue
			}
			num = n
		}

		switch {
		case strings.HasPrefix(unit, "h"):
			hours += num
		case strings.HasPrefix(unit, "m"):
			minutes += num
		default:
			seconds += num
		}
	}

	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second
	if total <= 0 {
		return 0, false
	}
	return total, true
}

var setPrepositionRe = regexp.MustCompile(`(?i)\b(?:in|for)\b`)

// IsCommand reports whether text addresses the timer, without acting
// on it. Classification and execution are separate so callers can
// parse a transcript more than once before running it.
func (e *Engine) IsCommand(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if strings.Contains(t, "set") && strings.Contains(t, "timer") && setPrepositionRe.MatchString(t) {
		return true
	}
	if strings.Contains(t, "how long") && strings.Contains(t, "timer") {
		return true
	}
	return (strings.Contains(t, "stop") || strings.Contains(t, "cancel")) &&
		(strings.Contains(t, "timer") || e.Ringing())
}

// HandleIntent answers timer phrases ("set a timer for ten minutes",
// "how long on the timer", "stop the timer"). The second return is
// false when the text is not a timer command.
func (e *Engine) HandleIntent(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))

	if strings.Contains(t, "set") && strings.Contains(t, "timer") && setPrepositionRe.MatchString(t) {
		d, ok := ParseDuration(t)
		if !ok {
			return "I couldn't parse the timer duration.", true
		}
		return e.Set(d), true
	}

	if strings.Contains(t, "how long") && strings.Contains(t, "timer") {
		return e.TimeLeft(), true
	}

	if (strings.Contains(t, "stop") || strings.Contains(t, "cancel")) &&
		(strings.Contains(t, "timer") || e.Ringing()) {
		return e.Stop(), true
	}

	return "", false
}
