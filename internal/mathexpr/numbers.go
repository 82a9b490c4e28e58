package mathexpr

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var unitWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11,
	"twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50, "sixty": 60,
	"seventy": 70, "eighty": 80, "ninety": 90,
}

var scaleWords = map[string]float64{
	"hundred": 100, "thousand": 1e3, "million": 1e6, "billion": 1e9,
	"trillion": 1e12, "quadrillion": 1e15, "quintillion": 1e18,
	"sextillion": 1e21, "septillion": 1e24, "octillion": 1e27,
	"nonillion": 1e30, "decillion": 1e33,
}

var fracWords = map[string]float64{
	"half": 1.0 / 2, "third": 1.0 / 3, "quarter": 1.0 / 4, "fourth": 1.0 / 4,
	"fifth": 1.0 / 5, "sixth": 1.0 / 6, "seventh": 1.0 / 7, "eighth": 1.0 / 8,
	"ninth": 1.0 / 9, "tenth": 1.0 / 10,
}

// allScales and allFracs include plural forms.
var (
	allScales = withPlurals(scaleWords)
	allFracs  = fracPlurals()
)

func withPlurals(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m)*2)
	for k, v := range m {
		out[k] = v
		out[k+"s"] = v
	}
	return out
}

func fracPlurals() map[string]float64 {
	out := make(map[string]float64, len(fracWords)*2)
	for k, v := range fracWords {
		out[k] = v
		out[k+"s"] = v
	}
	out["halves"] = fracWords["half"]
	delete(out, "halfs")
	return out
}

var (
	wordHyphenRe = regexp.MustCompile(`([a-z])-([a-z])`)
	digitCommaRe = regexp.MustCompile(`(\d),(\d)`)
	tokenRe      = regexp.MustCompile(`\w+|\W+`)
	nonWordRe    = regexp.MustCompile(`^\W+$`)
	numericRe    = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	digitsRe     = regexp.MustCompile(`^\d+$`)
)

func isNumberWord(w string) bool {
	if _, ok := unitWords[w]; ok {
		return true
	}
	if _, ok := allScales[w]; ok {
		return true
	}
	if _, ok := allFracs[w]; ok {
		return true
	}
	switch w {
	case "and", "a", "an", "point", "negative", "positive":
		return true
	}
	return numericRe.MatchString(w)
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// wordsToNumber rewrites spelled-out numbers as digits while leaving
// every other word in place:
//
//	"negative ten"               -> "-10"
//	"one hundred million and two" -> "100000002"
//	"two and a half"             -> "2.5"
//	"three quarters"             -> "0.75"
//	"twenty-one"                 -> "21"
func wordsToNumber(text string) string {
	s := strings.ToLower(text)
	s = wordHyphenRe.ReplaceAllString(s, "$1 $2")
	s = digitCommaRe.ReplaceAllString(s, "$1$2")

	tokens := tokenRe.FindAllString(s, -1)
	var out []string

	var total, current float64
	negPending := false
	inNumber := false
	decimalMode := false
	var decDigits []string
	lastWasUnitInt := false
	numStart := 0

	// flush emits the accumulated number. Whitespace swallowed inside
	// the phrase sits between numStart and the end of out; it is
	// dropped, keeping one separator when a word token follows.
	flush := func(keepWS bool) {
		if !inNumber {
			return
		}
		ws := ""
		for len(out) > numStart {
			ws = out[len(out)-1]
			out = out[:len(out)-1]
		}
		val := total + current
		if decimalMode && len(decDigits) > 0 {
			frac, _ := strconv.ParseFloat("0."+strings.Join(decDigits, ""), 64)
			val = total + current + frac
		}
		if negPending {
			val = -val
		}
		out = append(out, formatNumber(val))
		if keepWS && ws != "" {
			out = append(out, ws)
		}
		total, current = 0, 0
		negPending, inNumber, decimalMode = false, false, false
		decDigits = nil
		lastWasUnitInt = false
	}

	// nextWord finds the next word token at or after index j.
	nextWord := func(j int) string {
		for j < len(tokens) && nonWordRe.MatchString(tokens[j]) {
			j++
		}
		if j < len(tokens) {
			return strings.ToLower(strings.TrimSpace(tokens[j]))
		}
		return ""
	}

	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		if nonWordRe.MatchString(tok) {
			// Whitespace passes through; punctuation is a number boundary.
			if strings.TrimSpace(tok) == "" {
				out = append(out, tok)
				i++
				continue
			}
			flush(false)
			out = append(out, tok)
			i++
			continue
		}

		w := strings.ToLower(strings.TrimSpace(tok))
		if w == "" {
			i++
			continue
		}
		if !inNumber {
			numStart = len(out)
		}

		if w == "negative" && !inNumber {
			if isNumberWord(nextWord(i + 1)) {
				negPending = true
				inNumber = true
				i++
				continue
			}
		}
		if w == "positive" && !inNumber {
			if isNumberWord(nextWord(i + 1)) {
				negPending = false
				inNumber = true
				i++
				continue
			}
		}

		if numericRe.MatchString(w) {
			val, _ := strconv.ParseFloat(w, 64)
			if !inNumber {
				inNumber = true
				if val < 0 {
					negPending = true
					val = -val
				}
				current = val
			} else {
				if current != math.Trunc(current) {
					flush(true)
					out = append(out, tok)
				} else {
					current += val
				}
			}
			lastWasUnitInt = current == math.Trunc(current)
			i++
			continue
		}

		if frac, ok := allFracs[w]; ok {
			if !inNumber {
				inNumber = true
				current = frac
			} else if decimalMode {
				flush(true)
				out = append(out, tok)
			} else if lastWasUnitInt && total == 0 {
				// "three quarters" reads as a multiplier.
				current *= frac
			} else {
				current = total + current + frac
				total = 0
			}
			lastWasUnitInt = false
			i++
			continue
		}

		if w == "a" || w == "an" {
			nxt := nextWord(i + 1)
			if _, ok := allFracs[nxt]; ok {
				inNumber = true
				lastWasUnitInt = false
				i++
				continue
			}
			_, isScale := allScales[nxt]
			_, isUnit := unitWords[nxt]
			if isScale || isUnit {
				inNumber = true
				current++
				lastWasUnitInt = true
				i++
				continue
			}
			flush(true)
			out = append(out, tok)
			i++
			continue
		}

		if w == "and" && inNumber {
			i++
			continue
		}

		if w == "point" && inNumber && !decimalMode {
			decimalMode = true
			decDigits = nil
			j := i + 1
			for j < len(tokens) {
				t := tokens[j]
				if nonWordRe.MatchString(t) {
					j++
					continue
				}
				ww := strings.ToLower(strings.TrimSpace(t))
				if u, ok := unitWords[ww]; ok && u < 10 {
					decDigits = append(decDigits, strconv.Itoa(int(u)))
					j++
					continue
				}
				if digitsRe.MatchString(ww) {
					decDigits = append(decDigits, ww)
					j++
					continue
				}
				break
			}
			i = j
			continue
		}

		if u, ok := unitWords[w]; ok {
			current += u
			inNumber = true
			lastWasUnitInt = true
			i++
			continue
		}

		if scale, ok := allScales[w]; ok {
			if scale == 100 {
				if current == 0 {
					current = 1
				}
				current *= 100
			} else {
				if current == 0 {
					current = 1
				}
				total += current * scale
				current = 0
			}
			inNumber = true
			lastWasUnitInt = false
			i++
			continue
		}

		// Any other word ends the number phrase.
		flush(true)
		out = append(out, tok)
		i++
	}

	flush(false)
	return strings.Join(out, "")
}
