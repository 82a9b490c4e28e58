package mathexpr

import (
	"regexp"
	"strings"
)

const wordNumPattern = `zero|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|` +
	`thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|` +
	`twenty|thirty|forty|fifty|sixty|seventy|eighty|ninety|` +
	`hundred|thousand|million|billion|trillion|quadrillion|quintillion|` +
	`sextillion|septillion|octillion|nonillion|decillion|` +
	`half|third|quarter|fourth|fifth|sixth|seventh|eighth|ninth|tenth|` +
	`halves|thirds|quarters|fourths|fifths|sixths|sevenths|eighths|ninths|tenths|` +
	`point|and|a|an|negative|positive`

const opWordPattern = `plus|add(?:ed|ing)?|sum\s+of|minus|take\s+away|subtract(?:ed|ing)?|less|` +
	`times|multipl(?:y|ied)(?:\s+by)?|x|divided\s+by|divide(?:d|ing)?|over|` +
	`to\s+the\s+power\s+of|power\s+of|raised\s+to|squared|cubed|` +
	`square\s+root\s+of|cube\s+root\s+of|mod(?:ulo)?|mins|percent(?:\s+of)?|` +
	`(?:open|left)\s+(?:bracket|parenthesis|paren)|(?:close|right)\s+(?:bracket|parenthesis|paren)|` +
	`sqrt|sin|cos|tan|log10|log|exp|ceil|floor|fabs|abs|round|pi|tau|e|` +
	`from|to|by|between|difference|absolute|take|away`

var (
	windowTokenRe = regexp.MustCompile(`(?i)(?:\b(?:` + wordNumPattern + `|` + opWordPattern + `)\b|[0-9\.\(\)\+\-\*/%\^])`)
	gapRe         = regexp.MustCompile(`^[\s,]+$`)
)

// bestWindow finds the longest run of math-looking tokens in free text,
// merging tokens separated only by spaces or commas. This lets
// "finally home hey jarvis calculate 7 to the power of 4" reduce to
// "7 to the power of 4" and keeps "1 million - 1" in one piece.
func bestWindow(text string) (string, bool) {
	matches := windowTokenRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return "", false
	}

	type span struct{ start, end int }
	var spans []span
	cur := span{matches[0][0], matches[0][1]}
	for _, m := range matches[1:] {
		gap := text[cur.end:m[0]]
		if gap == "" || gapRe.MatchString(gap) {
			cur.end = m[1]
		} else {
			spans = append(spans, cur)
			cur = span{m[0], m[1]}
		}
	}
	spans = append(spans, cur)

	best := spans[0]
	for _, s := range spans[1:] {
		if s.end-s.start > best.end-best.start {
			best = s
		}
	}
	return strings.TrimSpace(text[best.start:best.end]), true
}
