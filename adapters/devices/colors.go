package devices

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// whitePresets maps spoken white-light names onto a colour temperature
// percentage, 0 being warmest and 100 coldest.
var whitePresets = map[string]int{
	"white":        50,
	"warm":         15,
	"warm white":   20,
	"soft white":   30,
	"neutral":      50,
	"cool":         80,
	"cool white":   85,
	"cold":         100,
	"candlelight":  0,
	"candle light": 0,
	"candle":       0,
	"daylight":     0,
	"day light":    0,
	"day":          0,
	"ivory":        100,
	"ivory white":  100,
	"amber":        10,
	"gold":         12,
	"sunset":       8,
	"sunrise":      12,
	"halogen":      25,
	"natural":      55,
	"pure white":   60,
	"bright white": 70,
	"arctic white": 95,
}

type rgb struct {
	R, G, B int
}

var namedColors = map[string]rgb{
	"red":     {255, 0, 0},
	"green":   {0, 255, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"purple":  {128, 0, 128},
	"pink":    {255, 105, 180},
	"orange":  {255, 165, 0},
	"cyan":    {0, 255, 255},
	"magenta": {255, 0, 255},

	"turquoise": {64, 224, 208},
	"lime":      {191, 255, 0},
	"teal":      {0, 128, 128},
	"violet":    {238, 130, 238},
	"indigo":    {75, 0, 130},
	"maroon":    {128, 0, 0},
	"navy":      {0, 0, 128},
	"olive":     {128, 128, 0},
	"aqua":      {0, 255, 255},
	"coral":     {255, 127, 80},
	"crimson":   {220, 20, 60},
	"lavender":  {230, 230, 250},
	"mint":      {189, 252, 201},
	"peach":     {255, 218, 185},
	"plum":      {221, 160, 221},
	"rose":      {255, 228, 225},
	"salmon":    {250, 128, 114},
	"scarlet":   {255, 36, 0},
	"tan":       {210, 180, 140},
	"beige":     {245, 245, 220},
	"burgundy":  {128, 0, 32},
	"emerald":   {80, 200, 120},
	"silver":    {192, 192, 192},
	"bronze":    {205, 127, 50},
	"charcoal":  {54, 69, 79},
	"chocolate": {210, 105, 30},
	"brown":     {165, 42, 42},
	"black":     {0, 0, 0},
	"gray":      {128, 128, 128},
	"grey":      {128, 128, 128},

	"baby blue":     {137, 207, 240},
	"baby pink":     {244, 194, 194},
	"powder blue":   {176, 224, 230},
	"mint green":    {152, 255, 152},
	"pastel yellow": {253, 253, 150},
	"pastel pink":   {255, 209, 220},
	"pastel purple": {179, 158, 181},
	"pastel orange": {255, 179, 71},
	"pastel green":  {119, 221, 119},
	"pastel blue":   {174, 198, 207},
	"pastel red":    {255, 105, 97},

	"neon green":  {57, 255, 20},
	"neon blue":   {77, 77, 255},
	"neon pink":   {255, 20, 147},
	"neon yellow": {207, 255, 4},
	"neon orange": {255, 95, 31},
	"neon purple": {177, 13, 201},

	"apricot": {251, 206, 177},
	"copper":  {184, 115, 51},
	"mustard": {255, 219, 88},
	"ochre":   {204, 119, 34},
	"rust":    {183, 65, 14},
	"saffron": {244, 196, 48},
	"sepia":   {112, 66, 20},

	"aquamarine": {127, 255, 212},
	"azure":      {0, 127, 255},
	"cobalt":     {0, 71, 171},
	"cerulean":   {42, 82, 190},
	"seafoam":    {159, 226, 191},
	"sky blue":   {135, 206, 235},
	"steel blue": {70, 130, 180},

	"khaki":        {240, 230, 140},
	"sand":         {194, 178, 128},
	"mahogany":     {192, 64, 0},
	"mocha":        {150, 75, 0},
	"coffee":       {111, 78, 55},
	"walnut":       {119, 63, 26},
	"forest green": {34, 139, 34},
	"hunter green": {53, 94, 59},

	"fuchsia":       {255, 0, 255},
	"chartreuse":    {127, 255, 0},
	"periwinkle":    {204, 204, 255},
	"blush":         {222, 93, 131},
	"cream":         {255, 253, 208},
	"off white":     {253, 253, 250},
	"pearl":         {234, 224, 200},
	"smoke":         {115, 130, 118},
	"slate":         {112, 128, 144},
	"gunmetal":      {42, 52, 57},
	"midnight blue": {25, 25, 112},
	"midnight":      {25, 25, 112},
	"obsidian":      {15, 15, 15},
}

func normalizeColor(color string) string {
	return strings.ToLower(strings.TrimSpace(color))
}

// parseColor resolves a spoken colour name or a hex literal into RGB.
// White-preset names are handled by the caller before reaching here.
func parseColor(color string) (rgb, error) {
	s := normalizeColor(color)
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s)
	}
	return rgb{}, fmt.Errorf("unsupported color '%s'", color)
}

func parseHexColor(s string) (rgb, error) {
	hex := s[1:]
	switch len(hex) {
	case 6:
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	default:
		return rgb{}, fmt.Errorf("unsupported color '%s'", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return rgb{}, fmt.Errorf("unsupported color '%s'", s)
	}
	return rgb{
		R: int(v >> 16 & 0xff),
		G: int(v >> 8 & 0xff),
		B: int(v & 0xff),
	}, nil
}

// rgbToHSV converts 0..255 RGB into hue degrees (0..360) plus
// saturation and value in 0..1, the coordinates bulbs expect.
func rgbToHSV(c rgb) (h, s, v float64) {
	r := float64(c.R) / 255.0
	g := float64(c.G) / 255.0
	b := float64(c.B) / 255.0

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	v = max
	if max > 0 {
		s = delta / max
	}
	if delta == 0 {
		return 0, s, v
	}
	switch max {
	case r:
		h = math.Mod((g-b)/delta, 6)
	case g:
		h = (b-r)/delta + 2
	default:
		h = (r-g)/delta + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h, s, v
}
