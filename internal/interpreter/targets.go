package interpreter

import (
	"sort"
	"strings"

	"github.com/emberhome/ember/domain/entities"
)

const (
	// overlapAccept is the token-overlap ratio a device must reach to
	// be selected outright.
	overlapAccept = 0.67
	// overlapAcceptWithRoom relaxes the ratio when the query names a
	// room the device belongs to.
	overlapAcceptWithRoom = 0.5
	// editDistanceCutoff is the minimum similarity for the last-resort
	// nearest-name match.
	editDistanceCutoff = 0.7
)

// resolver maps free-form query text onto device names from the
// static device table.
type resolver struct {
	names  []string
	tokens map[string]map[string]bool
}

func newResolver(devices []entities.Device) *resolver {
	r := &resolver{tokens: make(map[string]map[string]bool, len(devices))}
	for _, d := range devices {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			continue
		}
		r.names = append(r.names, name)
		toks := make(map[string]bool)
		cleaned := deviceNameCharRe.ReplaceAllString(strings.ToLower(name), "")
		for _, t := range strings.Fields(cleaned) {
			toks[t] = true
		}
		r.tokens[name] = toks
	}
	return r
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		out[t] = true
	}
	return out
}

func significant(tokens map[string]bool) map[string]bool {
	out := make(map[string]bool, len(tokens))
	for t := range tokens {
		if !genericTokens[t] {
			out[t] = true
		}
	}
	return out
}

// overlapScore is the fraction of the device's significant name
// tokens present in the query.
func overlapScore(deviceTokens, querySig map[string]bool) float64 {
	sig := significant(deviceTokens)
	inter := 0
	for t := range sig {
		if querySig[t] {
			inter++
		}
	}
	if inter == 0 {
		return 0
	}
	n := len(sig)
	if n < 1 {
		n = 1
	}
	return float64(inter) / float64(n)
}

func (r *resolver) bestFromTokens(query map[string]bool) []string {
	for t := range query {
		if allWords[t] {
			return append([]string(nil), r.names...)
		}
	}

	room := make(map[string]bool)
	for t := range query {
		if roomHints[t] {
			room[t] = true
		}
	}
	querySig := significant(query)

	type scored struct {
		score float64
		name  string
	}
	var candidates []scored
	for _, name := range r.names {
		toks := r.tokens[name]
		if len(room) > 0 {
			match := false
			for t := range room {
				if toks[t] {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		candidates = append(candidates, scored{overlapScore(toks, querySig), name})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	pick := func(threshold float64) []string {
		var hits []string
		for _, c := range candidates {
			if c.score >= threshold {
				hits = append(hits, c.name)
			}
		}
		return hits
	}

	if hits := pick(overlapAccept); len(hits) > 0 {
		return hits
	}
	if len(room) > 0 {
		if hits := pick(overlapAcceptWithRoom); len(hits) > 0 {
			return hits
		}
	}
	return nil
}

// freeform resolves devices from arbitrary query text, falling back
// from token overlap to substring containment to nearest-name match.
func (r *resolver) freeform(query string) []string {
	qt := tokenSet(normalize(query))
	if len(qt) == 0 || len(r.tokens) == 0 {
		return nil
	}
	if hits := r.bestFromTokens(qt); len(hits) > 0 {
		return hits
	}

	qn := strings.Join(sortedKeys(qt), " ")
	if len(qn) >= 5 {
		for _, name := range r.names {
			n := normalize(name)
			if strings.Contains(qn, n) || strings.Contains(n, qn) {
				return []string{name}
			}
		}
	}

	if name, ok := r.closest(qn); ok {
		return []string{name}
	}
	return nil
}

// extractTargets drops command filler words before resolving, so
// "turn the office lamp on" reduces to "office lamp".
func (r *resolver) extractTargets(text string) []string {
	stripped := stopWordsRe.ReplaceAllString(text, " ")
	stripped = actionWordsRe.ReplaceAllString(stripped, " ")
	stripped = strings.TrimSpace(multiSpaceRe.ReplaceAllString(stripped, " "))
	targets := r.freeform(stripped)
	if len(targets) == 0 && len(r.names) == 1 {
		return append([]string(nil), r.names...)
	}
	return targets
}

// roomDevices lists every device whose name mentions the room.
func (r *resolver) roomDevices(room string) []string {
	room = strings.ToLower(strings.TrimSpace(room))
	if room == "" {
		return nil
	}
	var out []string
	for _, name := range r.names {
		if strings.Contains(strings.ToLower(name), room) {
			out = append(out, name)
		}
	}
	return out
}

func (r *resolver) closest(query string) (string, bool) {
	bestName, bestScore := "", 0.0
	for _, name := range r.names {
		s := similarity(query, strings.ToLower(name))
		if s > bestScore {
			bestName, bestScore = name, s
		}
	}
	if bestScore >= editDistanceCutoff {
		return bestName, true
	}
	return "", false
}

// similarity is an edit-distance ratio in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	dist := prev[lb]
	max := la
	if lb > max {
		max = lb
	}
	return 1 - float64(dist)/float64(max)
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

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
