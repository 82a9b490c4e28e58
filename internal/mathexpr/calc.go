// Package mathexpr turns spoken arithmetic ("what is two hundred and
// five divided by 5") into an evaluated result. The pipeline is
// window extraction, phrase normalization, then a restricted AST
// evaluation of the resulting infix expression.
package mathexpr

import (
	"regexp"
	"strings"
)

var chunkRe = regexp.MustCompile(`[0-9a-z\.\(\)\+\-\*/%\s\^]+`)

// longestChunk picks the longest run of expression characters out of
// a normalized string, dropping any words normalization left behind.
func longestChunk(expr string) string {
	chunks := chunkRe.FindAllString(expr, -1)
	if len(chunks) == 0 {
		return strings.TrimSpace(expr)
	}
	best := chunks[0]
	for _, c := range chunks[1:] {
		if len(c) > len(best) {
			best = c
		}
	}
	return strings.TrimSpace(best)
}

func evalPhrase(text string) (float64, bool) {
	expr, err := Normalize(text)
	if err != nil || expr == "" {
		return 0, false
	}
	v, err := Evaluate(longestChunk(expr))
	if err != nil {
		return 0, false
	}
	return v, true
}

// TryCalculate reports whether text contains a computable arithmetic
// phrase and, if so, its value. It first tries the best math-looking
// window of the original text, then falls back to normalizing the
// whole thing.
func TryCalculate(text string) (float64, bool) {
	if w, ok := bestWindow(text); ok && w != "" {
		if v, ok := evalPhrase(w); ok {
			return v, true
		}
	}
	return evalPhrase(text)
}
