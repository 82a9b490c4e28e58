package listener

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/emberhome/ember/internal/protocol"
)

type fakeLauncher struct {
	lastQuery string
	fail      bool
}

func (f *fakeLauncher) Launch(query string) (string, error) {
	f.lastQuery = query
	if f.fail {
		return "", errors.New("no such app")
	}
	return "Launching " + query, nil
}

func newTestRouter(t *testing.T) (*Router, *fakeLauncher, *[]string, *int) {
	t.Helper()
	launcher := &fakeLauncher{}
	var spoken []string
	clips := 0
	r := NewRouter(launcher,
		func(text string) { spoken = append(spoken, text) },
		func() error { clips++; return nil },
		zaptest.NewLogger(t))
	return r, launcher, &spoken, &clips
}

func TestRouterStructuredLaunch(t *testing.T) {
	r, launcher, spoken, _ := newTestRouter(t)

	r.Handle(protocol.Routed("launch_app", "rocket league", "launch rocket league", "office"))

	if launcher.lastQuery != "rocket league" {
		t.Errorf("launcher query = %q", launcher.lastQuery)
	}
	if len(*spoken) != 1 || (*spoken)[0] != "Launching rocket league" {
		t.Errorf("spoken = %v", *spoken)
	}
}

func TestRouterLegacySentinelInMsg(t *testing.T) {
	r, launcher, _, clips := newTestRouter(t)

	r.Handle(protocol.Reply{Msg: "route_client: launch_app|doom"})
	if launcher.lastQuery != "doom" {
		t.Errorf("launcher query = %q", launcher.lastQuery)
	}

	r.Handle(protocol.Reply{Msg: "route_client: clip"})
	if *clips != 1 {
		t.Errorf("clips = %d, want 1", *clips)
	}
}

func TestRouterSpeaksPlainMessages(t *testing.T) {
	r, _, spoken, _ := newTestRouter(t)

	r.Handle(protocol.Speak("The answer is 41", "what is 12 times 3 plus 5", "office"))
	if len(*spoken) != 1 || (*spoken)[0] != "The answer is 41" {
		t.Errorf("spoken = %v", *spoken)
	}
}

func TestRouterHonorsSkipTTS(t *testing.T) {
	r, _, spoken, _ := newTestRouter(t)

	r.Handle(protocol.Empty())
	r.Handle(protocol.Reply{Msg: "should not be spoken", SkipTTS: true})
	if len(*spoken) != 0 {
		t.Errorf("spoken = %v, want none", *spoken)
	}
}

func TestRouterLaunchFailure(t *testing.T) {
	r, launcher, spoken, _ := newTestRouter(t)
	launcher.fail = true

	r.Handle(protocol.Routed("launch_app", "nonexistent", "", ""))
	if len(*spoken) != 1 || (*spoken)[0] != "Couldn't find 'nonexistent'" {
		t.Errorf("spoken = %v", *spoken)
	}
}
