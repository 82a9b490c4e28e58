package launcher

import (
	"regexp"
	"strings"
)

// stripWords are filler tokens ignored when deriving acronyms.
var stripWords = map[string]bool{
	"the": true, "and": true, "edition": true, "definitive": true,
	"remastered": true, "game": true, "of": true, "to": true, "for": true,
	"ii": true, "iii": true, "iv": true, "v": true, "vi": true, "vii": true,
	"online": true, "special": true, "enhanced": true, "ultimate": true,
}

var (
	markRe    = regexp.MustCompile("[®™©]")
	punctRe   = regexp.MustCompile(`[-_:,.()'\[\]]`)
	spacesRe  = regexp.MustCompile(`\s+`)
	editionRe = regexp.MustCompile(`\b(remastered|definitive|enhanced|special|ultimate)\b`)
)

func normTitle(s string) string {
	s = strings.ToLower(s)
	s = markRe.ReplaceAllString(s, "")
	s = punctRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

func acronym(s string) string {
	var b strings.Builder
	for _, w := range strings.Fields(normTitle(s)) {
		if stripWords[w] {
			continue
		}
		b.WriteByte(w[0])
	}
	return b.String()
}

// tokenSetRatio blends token overlap with character similarity so both
// reordered words and near-spellings score well.
func tokenSetRatio(a, b string) float64 {
	na, nb := normTitle(a), normTitle(b)
	setA := tokenSet(na)
	setB := tokenSet(nb)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	inter := 0
	union := len(setB)
	for w := range setA {
		if setB[w] {
			inter++
		} else {
			union++
		}
	}
	jaccard := float64(inter) / float64(union)
	return 0.6*jaccard + 0.4*charRatio(na, nb)
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		out[w] = true
	}
	return out
}

// charRatio is a Levenshtein similarity in [0,1].
func charRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	dist := prev[len(b)]
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return 1 - float64(dist)/float64(longer)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// buildAliasIndex maps normalized spoken names to appids: installed
// titles, acronyms, edition-stripped bases and common nicknames.
func buildAliasIndex(games map[string]string) map[string]string {
	alias := make(map[string]string)

	for appID, name := range games {
		n := normTitle(name)
		alias[n] = appID
		if ac := acronym(name); len(ac) >= 2 {
			alias[ac] = appID
		}
		base := strings.TrimSpace(spacesRe.ReplaceAllString(editionRe.ReplaceAllString(n, ""), " "))
		if base != "" && base != n {
			alias[base] = appID
		}
	}

	bind := func(preferredAppID string, fallbacks [][]string, nicknames []string) {
		target := ""
		if _, ok := games[preferredAppID]; ok {
			target = preferredAppID
		}
		if target == "" {
			for _, pieces := range fallbacks {
				if id := findAppIDContaining(games, pieces); id != "" {
					target = id
					break
				}
			}
		}
		if target == "" {
			return
		}
		for _, nick := range nicknames {
			alias[normTitle(nick)] = target
		}
	}

	bind("730",
		[][]string{{"counter", "strike", "2"}, {"counter", "strike"}},
		[]string{"cs2", "cs 2", "counter strike 2", "csgo", "cs:go",
			"counter strike global offensive", "counter strike", "cs",
			"counter stroke"})
	bind("570", [][]string{{"dota", "2"}, {"dota"}}, []string{"dota 2", "dota2", "dota"})
	bind("252950", [][]string{{"rocket", "league"}}, []string{"rocket league", "rl"})
	bind("3240220", [][]string{{"grand", "theft", "auto", "v"}, {"gta", "v"}},
		[]string{"gta v", "gta5", "gtav", "gta", "gta online"})
	bind("489830",
		[][]string{{"skyrim", "special", "edition"}, {"the", "elder", "scrolls", "v", "skyrim"}},
		[]string{"skyrim se", "skyrim special edition", "skyrim"})

	return alias
}

func findAppIDContaining(games map[string]string, pieces []string) string {
	for appID, name := range games {
		n := normTitle(name)
		all := true
		for _, piece := range pieces {
			if !strings.Contains(n, piece) {
				all = false
				break
			}
		}
		if all {
			return appID
		}
	}
	return ""
}

// searchGame resolves a spoken query: exact alias, acronym alias, then
// fuzzy over titles and aliases.
func searchGame(query string, games, alias map[string]string) (appID, name string, score float64, ok bool) {
	qn := normTitle(query)

	if id, hit := alias[qn]; hit {
		return id, games[id], 1.0, true
	}
	if id, hit := alias[acronym(qn)]; hit {
		return id, games[id], 0.95, true
	}

	best := make(map[string]float64)
	for id, title := range games {
		best[id] = tokenSetRatio(query, title)
	}
	for label, id := range alias {
		if s := tokenSetRatio(query, label); s > best[id] {
			best[id] = s
		}
	}

	for id, s := range best {
		if s > score {
			score = s
			appID = id
		}
	}
	if appID == "" || score < minMatchScore {
		return "", "", 0, false
	}
	return appID, games[appID], score, true
}
