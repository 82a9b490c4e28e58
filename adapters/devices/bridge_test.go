package devices

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// fakeDevice is an httptest stand-in for the on-device control
// endpoint. It records every command and serves a fixed state.
type fakeDevice struct {
	mu       sync.Mutex
	state    deviceState
	commands []command
	keys     []string
}

func (f *fakeDevice) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.keys = append(f.keys, r.Header.Get(deviceKeyHeader))
		json.NewEncoder(w).Encode(f.state)
	})
	mux.HandleFunc("/api/v1/command", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.keys = append(f.keys, r.Header.Get(deviceKeyHeader))
		var cmd command
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.commands = append(f.commands, cmd)
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (f *fakeDevice) recorded() []command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]command, len(f.commands))
	copy(out, f.commands)
	return out
}

func newTestBridge(t *testing.T, fake *fakeDevice) *Bridge {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	bridge := NewBridge(loadSampleTable(t), zap.NewNop())
	bridge.baseURL = srv.URL
	return bridge
}

func TestSetPowerSendsCommand(t *testing.T) {
	fake := &fakeDevice{}
	bridge := newTestBridge(t, fake)

	if err := bridge.SetPower(context.Background(), "den lamp", true); err != nil {
		t.Fatalf("SetPower failed: %v", err)
	}

	cmds := fake.recorded()
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(cmds))
	}
	if cmds[0].Cmd != "power" || cmds[0].On == nil || !*cmds[0].On {
		t.Errorf("unexpected command: %+v", cmds[0])
	}
	if fake.keys[0] != "k1" {
		t.Errorf("expected device key k1, got %q", fake.keys[0])
	}
}

func TestToggleFlipsCurrentState(t *testing.T) {
	fake := &fakeDevice{state: deviceState{On: true}}
	bridge := newTestBridge(t, fake)

	if err := bridge.Toggle(context.Background(), "hall plug"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	cmds := fake.recorded()
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(cmds))
	}
	if cmds[0].Cmd != "power" || cmds[0].On == nil || *cmds[0].On {
		t.Errorf("expected power off, got %+v", cmds[0])
	}
}

func TestSetColorPreservesBrightness(t *testing.T) {
	fake := &fakeDevice{state: deviceState{On: true, Mode: "colour", Value: 0.4}}
	bridge := newTestBridge(t, fake)

	if err := bridge.SetColor(context.Background(), "den lamp", "red"); err != nil {
		t.Fatalf("SetColor failed: %v", err)
	}

	cmds := fake.recorded()
	if len(cmds) != 2 {
		t.Fatalf("expected power then color, got %d commands", len(cmds))
	}
	if cmds[0].Cmd != "power" {
		t.Errorf("expected a power-on first, got %+v", cmds[0])
	}
	c := cmds[1]
	if c.Cmd != "color" || c.Hue == nil || c.Saturation == nil || c.Value == nil {
		t.Fatalf("unexpected color command: %+v", c)
	}
	if *c.Hue != 0 || *c.Saturation != 1 {
		t.Errorf("expected pure red hue 0 sat 1, got hue %v sat %v", *c.Hue, *c.Saturation)
	}
	if math.Abs(*c.Value-0.4) > 0.01 {
		t.Errorf("expected brightness preserved at 0.4, got %v", *c.Value)
	}
}

func TestSetColorWhitePreset(t *testing.T) {
	fake := &fakeDevice{state: deviceState{On: true, Brightness: 60}}
	bridge := newTestBridge(t, fake)

	if err := bridge.SetColor(context.Background(), "den lamp", "warm white"); err != nil {
		t.Fatalf("SetColor failed: %v", err)
	}

	cmds := fake.recorded()
	last := cmds[len(cmds)-1]
	if last.Cmd != "white" || last.Temp == nil || *last.Temp != 20 {
		t.Errorf("expected white preset temp 20, got %+v", last)
	}
	if last.Brightness == nil || *last.Brightness != 60 {
		t.Errorf("expected brightness preserved at 60, got %+v", last.Brightness)
	}
}

func TestSetColorRequiresCapability(t *testing.T) {
	bridge := newTestBridge(t, &fakeDevice{})

	err := bridge.SetColor(context.Background(), "hall plug", "red")
	if err == nil || !strings.Contains(err.Error(), "does not support color") {
		t.Errorf("expected a capability error, got %v", err)
	}
}

func TestSetBrightnessClampsPercent(t *testing.T) {
	fake := &fakeDevice{}
	bridge := newTestBridge(t, fake)

	if err := bridge.SetBrightness(context.Background(), "den lamp", 150); err != nil {
		t.Fatalf("SetBrightness failed: %v", err)
	}

	cmds := fake.recorded()
	last := cmds[len(cmds)-1]
	if last.Cmd != "brightness" || last.Brightness == nil || *last.Brightness != 100 {
		t.Errorf("expected brightness clamped to 100, got %+v", last)
	}
}

func TestStatusSentence(t *testing.T) {
	fake := &fakeDevice{state: deviceState{On: true, Brightness: 80}}
	bridge := newTestBridge(t, fake)

	status, err := bridge.Status(context.Background(), "den lamp")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status != "on at 80% brightness" {
		t.Errorf("unexpected status %q", status)
	}

	fake.mu.Lock()
	fake.state = deviceState{}
	fake.mu.Unlock()

	status, err = bridge.Status(context.Background(), "den lamp")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status != "off" {
		t.Errorf("expected off, got %q", status)
	}
}

func TestBridgeUnknownDevice(t *testing.T) {
	bridge := newTestBridge(t, &fakeDevice{})
	if err := bridge.SetPower(context.Background(), "garage light", true); err == nil {
		t.Error("expected an error for an unknown device")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want rgb
	}{
		{"red", rgb{255, 0, 0}},
		{"Neon Pink", rgb{255, 20, 147}},
		{"#ff8000", rgb{255, 128, 0}},
		{"#f80", rgb{255, 136, 0}},
	}
	for _, tt := range tests {
		got, err := parseColor(tt.in)
		if err != nil {
			t.Errorf("parseColor(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if _, err := parseColor("blurple"); err == nil {
		t.Error("expected an error for an unknown color")
	}
}

func TestRGBToHSV(t *testing.T) {
	h, s, v := rgbToHSV(rgb{255, 0, 0})
	if h != 0 || s != 1 || v != 1 {
		t.Errorf("red: got h=%v s=%v v=%v", h, s, v)
	}
	h, _, _ = rgbToHSV(rgb{0, 0, 255})
	if h != 240 {
		t.Errorf("blue: expected hue 240, got %v", h)
	}
}
