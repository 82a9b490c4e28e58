package interpreter

import (
	"regexp"
	"sort"
	"strings"
)

var launchRe = regexp.MustCompile(`\b(?:open up|start up|boot up|launch)\b`)

var clipPhrases = []string{"clip that", "clip it", "make a clip", "save that clip"}

var weatherWords = []string{"weather", "forecast", "temperature", "rain", "snow", "wind"}

var mathWords = []string{
	"plus", "add", "addition", "minus", "subtract", "subtraction",
	"times", "multiply", "multiplied", "multiplication",
	"divide", "divided", "division", "over", "into",
	"mod", "modulus", "remainder",
	"power", "to the power", "raised", "squared", "cubed",
	"square root", "cube root", "root",
	"percent of", "percentage of",
}

var timeDateWords = []string{"time", "date", "day", "month", "year", "today", "now"}

var searchStarts = []string{"who", "search", "what", "when", "where", "why", "how"}

var (
	onWords       = []string{"on", "enable", "start", "power on"}
	offWords      = []string{"off", "disable", "power off", "shutdown"}
	toggleWords   = []string{"toggle", "switch"}
	dimWords      = []string{"dim"}
	brightenWords = []string{"brighten"}
	statusPhrases = []string{"status", "state", "is it", "what is", "what's"}
)

var genericLightTokens = []string{"light", "lights", "lamp", "lamps", "bulb", "bulbs"}

// genericTokens are too common to identify a particular device.
var genericTokens = map[string]bool{"light": true, "lights": true, "lamp": true}

var allWords = map[string]bool{"all": true, "everything": true}

var roomHints = map[string]bool{
	"room": true, "bedroom": true, "kitchen": true, "office": true,
	"hall": true, "hallway": true, "living": true, "lounge": true, "bathroom": true,
}

// whiteColorWords are tunable-white presets handled by the color path.
var whiteColorWords = []string{
	"white", "warm", "cool", "cold", "neutral",
	"daylight", "day light", "day", "candlelight", "candle light", "candle",
	"ivory", "ivory white", "warm white", "cool white", "soft white",
	"amber", "gold", "sunset", "sunrise", "halogen", "natural", "pure white",
	"bright white", "arctic white",
}

var colorWords = append([]string{
	"red", "green", "blue", "yellow", "purple", "pink", "orange", "cyan", "magenta", "turquoise",

	"lime", "teal", "violet", "indigo", "maroon", "navy", "olive", "aqua", "coral", "crimson",
	"lavender", "mint", "peach", "plum", "rose", "salmon", "scarlet", "tan", "beige", "burgundy",
	"emerald", "silver", "bronze", "charcoal", "chocolate", "brown", "black", "gray", "grey",

	"baby blue", "baby pink", "powder blue", "mint green", "pastel yellow", "pastel pink",
	"pastel purple", "pastel orange", "pastel green", "pastel blue", "pastel red",

	"neon green", "neon blue", "neon pink", "neon yellow", "neon orange", "neon purple",

	"apricot", "copper", "mustard", "ochre", "russet", "rust", "saffron", "sepia",

	"aquamarine", "azure", "cobalt", "cerulean", "seafoam", "sky blue", "steel blue",

	"khaki", "sand", "mahogany", "mocha", "coffee", "walnut", "forest green", "hunter green",

	"fuchsia", "chartreuse", "periwinkle", "blush", "cream", "off white",
	"pearl", "smoke", "slate", "gunmetal", "midnight blue", "midnight", "obsidian",
}, whiteColorWords...)

// colorsByLength holds colorWords longest-first so compound names win
// over their components ("sky blue" before "blue").
var colorsByLength = func() []string {
	out := make([]string, len(colorWords))
	copy(out, colorWords)
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}()

var (
	hexColorRe = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	mathSymRe  = regexp.MustCompile(`(?i)\d+\s*(?:[\+\-\*/^]|percent)`)
	placeRe    = regexp.MustCompile(`(?i)\b(?:in|at|for)\s+([a-z0-9 ,.'-]{2,})$`)

	clauseSplitRe = regexp.MustCompile(`(?i)\b(?:and then|then|and)\b|[,;]`)

	turnOnRe  = regexp.MustCompile(`\b(?:turn|switch)\s+on\b`)
	turnOffRe = regexp.MustCompile(`\b(?:turn|switch)\s+off\b`)

	brightStrictRe    = regexp.MustCompile(`(?:brightness|bright)\s*(?:to|at|=)?\s*(\d{1,3})\s*%?`)
	brightStrictPreRe = regexp.MustCompile(`(\d{1,3})\s*%?\s*(?:brightness|bright)`)
	brightLooseToAtRe = regexp.MustCompile(`\b(?:to|at)\s*(\d{1,3})\s*%?\b`)
	brightLoosePctRe  = regexp.MustCompile(`\b(\d{1,3})\s*%\b`)
	brightLooseBareRe = regexp.MustCompile(`\b(\d{1,3})\b`)

	nonNormalRe      = regexp.MustCompile(`[^a-z0-9 #%]`)
	deviceNameCharRe = regexp.MustCompile(`[^a-z0-9 ]+`)
	stopWordsRe      = regexp.MustCompile(`\b(?:turn|set|switch|the|my|in|to|at|please|a|an|by|of)\b`)
	actionWordsRe    = regexp.MustCompile(`\b(?:on|off|toggle)\b`)
	multiSpaceRe     = regexp.MustCompile(`\s+`)
)

// normalize lowercases and strips everything but letters, digits,
// spaces, hex marks and percent signs.
func normalize(s string) string {
	return strings.TrimSpace(nonNormalRe.ReplaceAllString(strings.ToLower(s), ""))
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

// containsWord reports whether word occurs in text on word boundaries.
// Multi-word entries match as a boundary-delimited phrase.
func containsWord(text, word string) bool {
	idx := 0
	for {
		j := strings.Index(text[idx:], word)
		if j < 0 {
			return false
		}
		j += idx
		before := j == 0 || !isWordChar(text[j-1])
		end := j + len(word)
		after := end == len(text) || !isWordChar(text[end])
		if before && after {
			return true
		}
		idx = j + 1
	}
}

func containsAnyWord(text string, words []string) bool {
	for _, w := range words {
		if containsWord(text, w) {
			return true
		}
	}
	return false
}

// findColor returns an explicit hex code or the longest color name
// present in the text.
func findColor(text string) string {
	if h := hexColorRe.FindString(text); h != "" {
		return h
	}
	for _, c := range colorsByLength {
		if containsWord(text, c) {
			return c
		}
	}
	return ""
}

func isClipIntent(text string) bool {
	t := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	for _, p := range clipPhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

func splitClauses(text string) []string {
	var out []string
	for _, c := range clauseSplitRe.Split(text, -1) {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// extractGameQuery returns whatever follows the first launch phrase,
// with surrounding punctuation trimmed.
func extractGameQuery(text string) string {
	low := strings.ToLower(text)
	m := launchRe.FindStringIndex(low)
	if m == nil {
		return strings.Trim(text, " \t\n.,;:!?'\"")
	}
	return strings.Trim(text[m[1]:], " \t\n.,;:!?'\"")
}
