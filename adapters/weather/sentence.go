package weather

import (
	"fmt"
	"math"
	"strings"
)

// speakConditions renders one spoken sentence from raw conditions,
// preferring the API's own description over derived labels.
func speakConditions(w *conditions, label string) string {
	place := speakablePlace(label, w.Name)

	desc := ""
	if len(w.Weather) > 0 {
		desc = strings.ToLower(w.Weather[0].Description)
	}

	var out []string
	if w.Main.Temp != nil {
		out = append(out, fmt.Sprintf("It is %.0f degrees Celsius in %s", *w.Main.Temp, place))
	} else {
		out = append(out, "In "+place)
	}

	cloudText := cloudsLabel(w.Clouds.All)
	if desc != "" {
		out = append(out, "with "+desc)
		if cloudText != "" && w.Clouds.All != nil && *w.Clouds.All >= 85 && !strings.Contains(desc, "overcast") {
			out = append(out, "("+cloudText+")")
		}
	} else if cloudText != "" {
		out = append(out, "with "+cloudText)
	}

	rainText := precipPhrase("rain", w.Rain.OneH, w.Rain.ThreeH)
	snowText := precipPhrase("snow", w.Snow.OneH, w.Snow.ThreeH)
	if rainText != "" {
		out = append(out, "and "+rainText)
	}
	if snowText != "" {
		joiner := "with"
		if rainText != "" {
			joiner = "and"
		}
		out = append(out, joiner+" "+snowText)
	}

	if humText := humidityLabel(w.Main.Humidity); humText != "" {
		out = append(out, "and "+humText)
	}

	if windText := windLabel(w.Wind.Speed); windText != "" {
		if dir := windDirWords(w.Wind.Deg); dir != "" {
			out = append(out, "and "+windText+" from the "+dir)
		} else {
			out = append(out, "and "+windText)
		}
		if w.Wind.Gust != nil && *w.Wind.Gust > 0 {
			out = append(out, fmt.Sprintf("with gusts up to %.1f metres per second", *w.Wind.Gust))
		}
	}

	if visText := visibilityLabel(w.Visibility); visText != "" {
		out = append(out, "and "+visText)
	}

	sentence := strings.TrimSpace(strings.Join(out, " "))
	if !strings.HasSuffix(sentence, ".") {
		sentence += "."
	}

	if w.Main.Temp != nil && w.Main.FeelsLike != nil && math.Abs(*w.Main.FeelsLike-*w.Main.Temp) >= 2 {
		sentence += fmt.Sprintf(" It feels like %.0f degrees Celsius.", *w.Main.FeelsLike)
	}
	return sentence
}

// speakablePlace drops country fragments that sound clumsy read aloud.
func speakablePlace(label, fallback string) string {
	if label == "" {
		label = fallback
	}
	omit := map[string]bool{
		"gb": true, "great britain": true, "united kingdom": true,
		"scotland": true, "england": true, "wales": true, "northern ireland": true,
	}

	var parts []string
	for _, p := range strings.Split(label, ",") {
		p = strings.TrimSpace(p)
		if p == "" || omit[strings.ToLower(p)] {
			continue
		}
		parts = append(parts, titleCase(p))
	}
	if len(parts) == 0 {
		return "your area"
	}
	return strings.Join(parts, ", ")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func humidityLabel(h *float64) string {
	switch {
	case h == nil:
		return ""
	case *h < 30:
		return "low humidity"
	case *h < 60:
		return "moderate humidity"
	case *h < 80:
		return "high humidity"
	default:
		return "very high humidity"
	}
}

// windLabel follows the Beaufort scale boundaries in metres per second.
func windLabel(ms *float64) string {
	switch {
	case ms == nil:
		return ""
	case *ms < 0.5:
		return "calm air"
	case *ms < 1.5:
		return "light air"
	case *ms < 3.3:
		return "a light breeze"
	case *ms < 5.5:
		return "a gentle breeze"
	case *ms < 7.9:
		return "a moderate breeze"
	case *ms < 10.7:
		return "a fresh breeze"
	case *ms < 13.8:
		return "a strong breeze"
	case *ms < 17.1:
		return "near gale winds"
	case *ms < 20.7:
		return "gale force winds"
	default:
		return "storm force winds"
	}
}

func windDirWords(deg *float64) string {
	if deg == nil {
		return ""
	}
	names := []string{
		"north", "north northeast", "northeast", "east northeast",
		"east", "east southeast", "southeast", "south southeast",
		"south", "south southwest", "southwest", "west southwest",
		"west", "west northwest", "northwest", "north northwest",
	}
	idx := int(math.Mod(*deg, 360)/22.5+0.5) % 16
	return names[idx]
}

func cloudsLabel(pct *float64) string {
	switch {
	case pct == nil:
		return ""
	case *pct <= 5:
		return "clear skies"
	case *pct <= 25:
		return "mostly clear skies"
	case *pct <= 50:
		return "scattered clouds"
	case *pct <= 84:
		return "mostly cloudy skies"
	default:
		return "overcast skies"
	}
}

func precipPhrase(kind string, mm1h, mm3h *float64) string {
	amt := mm1h
	if amt == nil {
		amt = mm3h
	}
	if amt == nil {
		return ""
	}

	var level string
	switch {
	case *amt < 0.2:
		unit := "drops"
		if kind == "snow" {
			unit = "flurries"
		}
		level = "a few " + unit
	case *amt < 1:
		level = "light " + kind
	case *amt < 3:
		level = "moderate " + kind
	default:
		level = "heavy " + kind
	}

	if mm1h != nil {
		return fmt.Sprintf("%s, about %.1f millimetres in the last hour", level, *mm1h)
	}
	return fmt.Sprintf("%s, about %.1f millimetres in the last three hours", level, *mm3h)
}

func visibilityLabel(meters *float64) string {
	if meters == nil {
		return ""
	}
	km := *meters / 1000.0
	switch {
	case km >= 10:
		return ""
	case km >= 5:
		return "good visibility"
	case km >= 2:
		return "reduced visibility"
	case km >= 1:
		return "poor visibility"
	default:
		return "very poor visibility"
	}
}
