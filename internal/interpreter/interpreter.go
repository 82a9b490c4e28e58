// Package interpreter classifies transcribed utterances and executes
// them: device control, arithmetic, time, timers, weather, web
// answers, and actions routed back to the listener device.
package interpreter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/entities"
	"github.com/emberhome/ember/domain/repositories"
	"github.com/emberhome/ember/internal/clockphrase"
	"github.com/emberhome/ember/internal/mathexpr"
	"github.com/emberhome/ember/internal/protocol"
	"github.com/emberhome/ember/internal/timer"
)

const (
	dimPresetPct      = 30
	brightenPresetPct = 100
)

// Deps are the collaborators an Interpreter dispatches to. Weather and
// Answers may be nil, in which case those intents report an error
// sentence instead.
type Deps struct {
	Controller repositories.DeviceController
	Timer      *timer.Engine
	Weather    repositories.WeatherService
	Answers    repositories.AnswerService
	Logger     *zap.Logger
}

type Interpreter struct {
	resolver   *resolver
	controller repositories.DeviceController
	timer      *timer.Engine
	weather    repositories.WeatherService
	answers    repositories.AnswerService
	logger     *zap.Logger
}

func New(devices []entities.Device, deps Deps) *Interpreter {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{
		resolver:   newResolver(devices),
		controller: deps.Controller,
		timer:      deps.Timer,
		weather:    deps.Weather,
		answers:    deps.Answers,
		logger:     logger,
	}
}

// neverSplit intents consume the whole utterance even when it contains
// clause separators ("one hundred and five" is not two commands).
var neverSplit = map[entities.ActionKind]bool{
	entities.ActionTime:      true,
	entities.ActionWeather:   true,
	entities.ActionMath:      true,
	entities.ActionLaunchApp: true,
	entities.ActionClip:      true,
}

// Execute interprets one transcript and returns the sentence (or
// routing sentinel) to send back. room tags the utterance's origin and
// is used as a target fallback for underspecified clauses.
func (in *Interpreter) Execute(ctx context.Context, text, room string) string {
	intent := in.parse(text)
	in.logger.Debug("parsed intent",
		zap.String("kind", string(intent.Kind)),
		zap.String("value", intent.Value),
		zap.Strings("targets", intent.Targets))

	if neverSplit[intent.Kind] {
		return in.runAction(ctx, intent)
	}

	clauses := splitClauses(text)
	if len(clauses) > 1 {
		shared := in.resolver.extractTargets(normalize(text))
		if len(shared) == 0 && room != "" {
			shared = in.resolver.roomDevices(room)
		}

		var outputs []string
		for _, clause := range clauses {
			ci := in.parse(clause)
			if len(ci.Targets) == 0 {
				ci.Targets = shared
				if len(ci.Targets) == 0 && room != "" {
					ci.Targets = in.resolver.roomDevices(room)
				}
			}
			if out := in.runAction(ctx, ci); out != "" {
				outputs = append(outputs, out)
			}
		}
		return strings.Join(outputs, "\n")
	}

	if len(intent.Targets) == 0 {
		intent.Targets = in.resolver.freeform(text)
		if len(intent.Targets) == 0 && room != "" {
			intent.Targets = in.resolver.roomDevices(room)
		}
	}
	return in.runAction(ctx, intent)
}

// parse runs the fixed priority chain. Earlier rules win because the
// vocabularies overlap.
func (in *Interpreter) parse(text string) entities.Intent {
	if isClipIntent(text) {
		return entities.Intent{Kind: entities.ActionClip}
	}
	if launchRe.MatchString(strings.ToLower(text)) {
		return entities.Intent{Kind: entities.ActionLaunchApp, Value: extractGameQuery(text)}
	}

	t := normalize(text)
	targetsGuess := in.resolver.extractTargets(t)

	if containsAnyWord(t, weatherWords) {
		place := ""
		if m := placeRe.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
			place = strings.TrimSpace(m[1])
		}
		return entities.Intent{Kind: entities.ActionWeather, Value: place}
	}

	if containsAnyWord(t, mathWords) || mathSymRe.MatchString(text) {
		return entities.Intent{Kind: entities.ActionMath, Value: text}
	}

	if containsAnyWord(t, timeDateWords) {
		return entities.Intent{Kind: entities.ActionTime, Value: text}
	}

	// Classification only. The timer engine mutates state when it
	// handles a command, so that happens in runAction, never here.
	if in.timer != nil && in.timer.IsCommand(text) {
		return entities.Intent{Kind: entities.ActionTimer, Value: text}
	}

	low := strings.ToLower(text)
	for _, q := range searchStarts {
		if strings.HasPrefix(low, q) {
			return entities.Intent{Kind: entities.ActionSearch, Value: text}
		}
	}

	if containsAnyWord(t, dimWords) && in.looksLikeLight(t, targetsGuess) {
		return entities.Intent{Kind: entities.ActionBrightness, Value: strconv.Itoa(dimPresetPct), Targets: targetsGuess}
	}
	if containsAnyWord(t, brightenWords) && in.looksLikeLight(t, targetsGuess) {
		return entities.Intent{Kind: entities.ActionBrightness, Value: strconv.Itoa(brightenPresetPct), Targets: targetsGuess}
	}

	if containsAnyWord(t, statusPhrases) {
		return entities.Intent{Kind: entities.ActionStatus, Targets: in.resolver.extractTargets(t)}
	}

	if turnOnRe.MatchString(t) {
		return entities.Intent{Kind: entities.ActionOn, Targets: in.resolver.extractTargets(t)}
	}
	if turnOffRe.MatchString(t) {
		return entities.Intent{Kind: entities.ActionOff, Targets: in.resolver.extractTargets(t)}
	}

	if pct, ok := in.extractBrightness(t, targetsGuess); ok {
		return entities.Intent{Kind: entities.ActionBrightness, Value: strconv.Itoa(pct), Targets: targetsGuess}
	}

	if color := findColor(t); color != "" {
		return entities.Intent{Kind: entities.ActionColor, Value: color, Targets: in.resolver.extractTargets(t)}
	}

	if containsAnyWord(t, toggleWords) {
		return entities.Intent{Kind: entities.ActionToggle, Targets: in.resolver.extractTargets(t)}
	}
	hasOff := containsAnyWord(t, offWords)
	hasOn := containsAnyWord(t, onWords)
	if hasOff && !hasOn {
		return entities.Intent{Kind: entities.ActionOff, Targets: in.resolver.extractTargets(t)}
	}
	if hasOn && !hasOff {
		return entities.Intent{Kind: entities.ActionOn, Targets: in.resolver.extractTargets(t)}
	}

	for _, preset := range whiteColorWords {
		if containsWord(t, preset) {
			return entities.Intent{Kind: entities.ActionColor, Value: preset, Targets: in.resolver.extractTargets(t)}
		}
	}

	return entities.Intent{Kind: entities.ActionUnknown}
}

func (in *Interpreter) looksLikeLight(text string, targets []string) bool {
	if containsAnyWord(text, genericLightTokens) {
		return true
	}
	for _, target := range targets {
		lt := strings.ToLower(target)
		for _, w := range genericLightTokens {
			if strings.Contains(lt, w) {
				return true
			}
		}
	}
	return false
}

func (in *Interpreter) extractBrightness(t string, targetsGuess []string) (int, bool) {
	if containsWord(t, "brightness") || containsWord(t, "dim") || containsWord(t, "brighten") {
		m := brightStrictRe.FindStringSubmatch(t)
		if m == nil {
			m = brightStrictPreRe.FindStringSubmatch(t)
		}
		if m != nil {
			return clampPct(m[1]), true
		}
	}

	targets := targetsGuess
	if len(targets) == 0 {
		targets = in.resolver.freeform(t)
	}
	if !in.looksLikeLight(t, targets) {
		return 0, false
	}
	m := brightLooseToAtRe.FindStringSubmatch(t)
	if m == nil {
		m = brightLoosePctRe.FindStringSubmatch(t)
	}
	if m == nil && len(targets) > 0 {
		m = brightLooseBareRe.FindStringSubmatch(t)
	}
	if m == nil {
		return 0, false
	}
	return clampPct(m[1]), true
}

func clampPct(raw string) int {
	v, _ := strconv.Atoi(raw)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (in *Interpreter) runAction(ctx context.Context, intent entities.Intent) string {
	switch intent.Kind {
	case entities.ActionClip:
		return protocol.RouteSentinel("clip", "")

	case entities.ActionLaunchApp:
		return protocol.RouteSentinel("launch_app", strings.TrimSpace(intent.Value))

	case entities.ActionWeather:
		if in.weather == nil {
			return "Weather is not configured."
		}
		report, err := in.weather.Current(ctx, intent.Value)
		if err != nil {
			return fmt.Sprintf("Couldn't get the weather: %v", err)
		}
		return report

	case entities.ActionMath:
		v, ok := mathexpr.TryCalculate(intent.Value)
		if !ok {
			return "No calculation found."
		}
		return "The answer is " + strconv.FormatFloat(v, 'f', -1, 64)

	case entities.ActionTime:
		return clockphrase.Message(intent.Value)

	case entities.ActionTimer:
		if in.timer == nil {
			return "Timers are not configured."
		}
		resp, _ := in.timer.HandleIntent(intent.Value)
		return resp

	case entities.ActionSearch:
		if in.answers == nil {
			return "Search is not configured."
		}
		answer, err := in.answers.Answer(ctx, intent.Value)
		if err != nil {
			return fmt.Sprintf("Search error: %v", err)
		}
		return answer
	}

	targets := intent.Targets
	if len(targets) == 0 {
		if intent.Kind == entities.ActionUnknown {
			return "Sorry, I didn't understand that command."
		}
		return "No matching device."
	}

	switch intent.Kind {
	case entities.ActionOn:
		return in.execEach(ctx, targets, "turned on", func(ctx context.Context, name string) error {
			return in.controller.SetPower(ctx, name, true)
		})
	case entities.ActionOff:
		return in.execEach(ctx, targets, "turned off", func(ctx context.Context, name string) error {
			return in.controller.SetPower(ctx, name, false)
		})
	case entities.ActionToggle:
		return in.execEach(ctx, targets, "toggled", in.controller.Toggle)
	case entities.ActionColor:
		color := intent.Value
		if color == "" {
			color = "white"
		}
		return in.execEach(ctx, targets, "set to "+color, func(ctx context.Context, name string) error {
			return in.controller.SetColor(ctx, name, color)
		})
	case entities.ActionBrightness:
		pct := 100
		if intent.Value != "" {
			pct, _ = strconv.Atoi(intent.Value)
		}
		return in.execEach(ctx, targets, fmt.Sprintf("brightness set to %d%%", pct), func(ctx context.Context, name string) error {
			return in.controller.SetBrightness(ctx, name, pct)
		})
	case entities.ActionStatus:
		var lines []string
		for _, name := range targets {
			status, err := in.controller.Status(ctx, name)
			if err != nil {
				lines = append(lines, fmt.Sprintf("%s: Error: %v", name, err))
				continue
			}
			lines = append(lines, fmt.Sprintf("%s: %s", name, status))
		}
		return strings.Join(lines, "\n")
	}

	// last resort: a resolvable target with no recognizable verb
	return in.execEach(ctx, targets, "toggled", in.controller.Toggle)
}

// execEach applies one device operation per target, isolating failures
// so one broken device never aborts the rest.
func (in *Interpreter) execEach(ctx context.Context, targets []string, label string, fn func(ctx context.Context, name string) error) string {
	var lines []string
	for _, name := range targets {
		if err := fn(ctx, name); err != nil {
			in.logger.Warn("device operation failed", zap.String("device", name), zap.Error(err))
			lines = append(lines, fmt.Sprintf("%s: Error: %v", name, err))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", name, label))
	}
	if len(lines) == 0 {
		return "Sorry, I didn't understand that."
	}
	return strings.Join(lines, "\n")
}
