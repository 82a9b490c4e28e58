package entities

// ActionKind is the closed set of things a single utterance (or clause)
// can ask for. Classification is total: anything unrecognized maps to
// ActionUnknown.
type ActionKind string

const (
	ActionClip       ActionKind = "clip"
	ActionLaunchApp  ActionKind = "launch_app"
	ActionWeather    ActionKind = "weather"
	ActionMath       ActionKind = "math"
	ActionTime       ActionKind = "time"
	ActionTimer      ActionKind = "timer"
	ActionSearch     ActionKind = "search"
	ActionBrightness ActionKind = "brightness"
	ActionStatus     ActionKind = "status"
	ActionOn         ActionKind = "on"
	ActionOff        ActionKind = "off"
	ActionToggle     ActionKind = "toggle"
	ActionColor      ActionKind = "color"
	ActionUnknown    ActionKind = "unknown"
)

// Intent is the classified form of one clause: what to do, an optional
// value payload (color name, brightness percentage, math text, ...) and
// the device names the clause resolved on its own.
type Intent struct {
	Kind    ActionKind
	Value   string
	Targets []string
}
