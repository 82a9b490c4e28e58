package listener

import (
	"strings"

	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/repositories"
	"github.com/emberhome/ember/internal/protocol"
)

// Router executes a Reply on the listener side: either run the routed
// local action or speak the message aloud.
type Router struct {
	launcher repositories.AppLauncher
	speak    func(text string)
	clip     func() error
	logger   *zap.Logger
}

// NewRouter wires the local collaborators. speak must be non-blocking;
// launcher and clip may be nil when the machine has no such facility.
func NewRouter(launcher repositories.AppLauncher, speak func(text string), clip func() error, logger *zap.Logger) *Router {
	if speak == nil {
		speak = func(string) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{launcher: launcher, speak: speak, clip: clip, logger: logger}
}

// Handle dispatches one reply. Structured routing wins over the legacy
// sentinel embedded in msg; anything else is spoken unless skip_tts.
func (r *Router) Handle(reply protocol.Reply) {
	if strings.EqualFold(reply.Route, protocol.RouteClient) {
		if r.runLocal(strings.ToLower(reply.Action), reply.Query) {
			return
		}
	}

	if action, query, ok := protocol.ParseRouted(reply.Msg); ok {
		if r.runLocal(action, query) {
			return
		}
	}

	if reply.SkipTTS {
		return
	}
	if msg := strings.TrimSpace(reply.Msg); msg != "" {
		r.logger.Info("speaking reply", zap.String("msg", msg))
		r.speak(msg)
	}
}

func (r *Router) runLocal(action, query string) bool {
	switch action {
	case "launch_app", "launch_game":
		r.launchApp(query)
		return true
	case "clip":
		r.makeClip()
		return true
	}
	return false
}

func (r *Router) launchApp(query string) {
	if r.launcher == nil {
		r.speak("App launching isn't set up on this machine.")
		return
	}
	spoken, err := r.launcher.Launch(query)
	if err != nil {
		r.logger.Warn("launch failed", zap.String("query", query), zap.Error(err))
		r.speak("Couldn't find '" + query + "'")
		return
	}
	if spoken == "" {
		spoken = "Couldn't find '" + query + "'"
	}
	r.speak(spoken)
}

func (r *Router) makeClip() {
	if r.clip == nil {
		r.speak("Clipping isn't set up on this machine.")
		return
	}
	if err := r.clip(); err != nil {
		r.logger.Warn("clip failed", zap.Error(err))
		r.speak("Couldn't save the clip.")
		return
	}
	r.speak("Clipped.")
}
