package mathexpr

import (
	"errors"
	"regexp"
	"strings"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// Phrase-level rewrites run before single-word operators so that
// "subtract A from B" keeps its operand order. More specific first.
var preRewrites = []rewrite{
	{regexp.MustCompile(`(?i)\babsolute\s+difference\s+between\s+(.+?)\s+and\s+(.+?)\b`), `abs($1 - $2)`},
	{regexp.MustCompile(`(?i)\babsolute\s+difference\s+of\s+(.+?)\s+and\s+(.+?)\b`), `abs($1 - $2)`},
	{regexp.MustCompile(`(?i)\bdifference\s+between\s+(.+?)\s+and\s+(.+?)\b`), `($1 - $2)`},

	{regexp.MustCompile(`(?i)\bsubtract\s+(.+?)\s+from\s+(.+?)\b`), `($2 - $1)`},
	{regexp.MustCompile(`(?i)\btake\s+(.+?)\s+away\s+from\s+(.+?)\b`), `($2 - $1)`},
	{regexp.MustCompile(`(?i)\badd\s+(.+?)\s+to\s+(.+?)\b`), `($2 + $1)`},
	{regexp.MustCompile(`(?i)\bdivide\s+(.+?)\s+by\s+(.+?)\b`), `($1 / $2)`},
	{regexp.MustCompile(`(?i)\bmultiply\s+(.+?)\s+by\s+(.+?)\b`), `($1 * $2)`},
	{regexp.MustCompile(`(?i)\b(.+?)\s+less\s+than\s+(.+?)\b`), `($2 - $1)`},

	{regexp.MustCompile(`(?i)\bcube\s+root\s+of\s+([^\(\)]+)`), `($1) ** (1/3)`},
}

var wordOperators = []rewrite{
	{regexp.MustCompile(`(?i)\b(?:open|left)\s+(?:bracket|parenthesis|paren)\b`), `(`},
	{regexp.MustCompile(`(?i)\b(?:close|right)\s+(?:bracket|parenthesis|paren)\b`), `)`},

	{regexp.MustCompile(`(?i)\bplus\b`), `+`},
	{regexp.MustCompile(`(?i)\badd(?:ed|ing)?\b`), `+`},
	{regexp.MustCompile(`(?i)\bsum\s+of\b`), `+`},

	{regexp.MustCompile(`(?i)\bminus\b`), `-`},
	{regexp.MustCompile(`(?i)\btake\s+away\b`), `-`},
	{regexp.MustCompile(`(?i)\bsubtract(?:ed|ing)?\b`), `-`},
	{regexp.MustCompile(`(?i)\bless\b`), `-`},

	{regexp.MustCompile(`(?i)\b(?:times|multiplied\s+by|x)\b`), `*`},
	{regexp.MustCompile(`(?i)\bmultiply(?:ed|ing)?\b`), `*`},

	{regexp.MustCompile(`(?i)\b(?:divided\s+by|over)\b`), `/`},
	{regexp.MustCompile(`(?i)\bdivide(?:ed|ing)?\b`), `/`},

	{regexp.MustCompile(`(?i)\b(?:to\s+the\s+power\s+of|power\s+of|raised\s+to)\b`), `**`},
	{regexp.MustCompile(`(?i)\bsquared\b`), `**2`},
	{regexp.MustCompile(`(?i)\bcubed\b`), `**3`},

	{regexp.MustCompile(`(?i)\bsquare\s+root\s+of\b`), `sqrt(`},

	{regexp.MustCompile(`(?i)\bmod(?:ulo)?\b`), `%`},

	// common transcription typo for "minus"
	{regexp.MustCompile(`(?i)(\d)\s+mins\s+(\d)`), `$1 - $2`},

	{regexp.MustCompile(`(?i)\bpercent\s+of\b`), `% of`},
	{regexp.MustCompile(`(?i)\bpercent\b`), `%`},
}

var (
	leadStripRe = regexp.MustCompile(`(?i)^\s*(?:hey\s+\w+[,\s]+)?\s*(?:(?:what\s+is|what(?:'s|s)|how\s+much(?:\s+is)?|how\s+many|calculate|compute|work\s*out|solve|evaluate|equals?|equal\s+to|give\s+me|find|tell\s+me|can\s+you|could\s+you|please|show\s+me|is)\s+)+`)
	trailTrashRe = regexp.MustCompile(`[?=\s]+$`)

	percentOfRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%\s*of\s*(\d+(?:\.\d+)?)`)
	percentRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

	unaryNegRe = regexp.MustCompile(`(?i)(^|[\(\+\-\*/%])\s*negative\s+(\d+(?:\.\d+)?)`)

	spaceRe      = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^0-9\.\+\-\*/%\(\)\s,\^a-z_]`)
)

func preclean(text string) string {
	s := leadStripRe.ReplaceAllString(strings.TrimSpace(text), "")
	s = strings.TrimSpace(trailTrashRe.ReplaceAllString(s, ""))
	if s == "" {
		return s
	}
	r := strings.NewReplacer("–", "-", "—", "-", "−", "-", "×", "x", "÷", "/")
	return r.Replace(s)
}

func applyRewrites(s string, set []rewrite) string {
	for _, rw := range set {
		s = rw.re.ReplaceAllString(s, rw.repl)
	}
	return s
}

func applyPercentRules(s string) string {
	s = percentOfRe.ReplaceAllString(s, `($1/100)*($2)`)
	return percentRe.ReplaceAllString(s, `($1/100)`)
}

func applyUnaryNegatives(s string) string {
	return unaryNegRe.ReplaceAllString(s, `$1-$2`)
}

// closeOpenParens appends the closing parens a spoken "square root of 2"
// rewrite leaves dangling. It never removes anything.
func closeOpenParens(s string) string {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	if depth > 0 {
		s += strings.Repeat(")", depth)
	}
	return s
}

// Normalize rewrites a spoken arithmetic phrase into a plain infix
// expression ("two hundred and five divided by 5" -> "205 / 5"). The
// returned string may still carry surrounding words; chunk selection
// in TryCalculate cuts those away.
func Normalize(text string) (string, error) {
	s := preclean(text)
	if s == "" {
		return "", nil
	}
	s = applyRewrites(s, preRewrites)
	s = applyRewrites(s, wordOperators)
	s = wordsToNumber(s)
	s = applyUnaryNegatives(s)
	s = applyPercentRules(s)
	s = closeOpenParens(s)
	s = strings.ReplaceAll(s, "^", "**")
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	if disallowedRe.MatchString(s) {
		return "", errors.New("disallowed characters in expression")
	}
	return s, nil
}
