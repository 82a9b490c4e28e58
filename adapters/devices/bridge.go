package devices

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/entities"
	"github.com/emberhome/ember/domain/repositories"
)

const (
	// devicePort is where the on-device control endpoint listens.
	devicePort      = 6680
	bridgeTimeout   = 5 * time.Second
	deviceKeyHeader = "X-Device-Key"
)

// Bridge drives smart bulbs and plugs over their LAN control endpoint.
// Each call resolves the target from the device table, so a renamed or
// re-flashed device only needs a table reload.
type Bridge struct {
	table  *Table
	client *http.Client
	logger *zap.Logger

	// baseURL overrides the per-device address; tests point it at a
	// local server.
	baseURL string
}

var _ repositories.DeviceController = (*Bridge)(nil)

// command is the request body of the on-device control endpoint.
type command struct {
	Cmd        string   `json:"cmd"`
	On         *bool    `json:"on,omitempty"`
	Hue        *float64 `json:"hue,omitempty"`
	Saturation *float64 `json:"saturation,omitempty"`
	Value      *float64 `json:"value,omitempty"`
	Brightness *int     `json:"brightness,omitempty"`
	Temp       *int     `json:"temperature,omitempty"`
}

// deviceState mirrors the on-device status document.
type deviceState struct {
	On         bool    `json:"on"`
	Mode       string  `json:"mode"`
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Value      float64 `json:"value"`
	Brightness int     `json:"brightness"`
	Temp       int     `json:"temperature"`
}

func NewBridge(table *Table, logger *zap.Logger) *Bridge {
	return &Bridge{
		table:  table,
		client: &http.Client{Timeout: bridgeTimeout},
		logger: logger,
	}
}

// SetPower switches the device on or off.
func (b *Bridge) SetPower(ctx context.Context, name string, on bool) error {
	dev, err := b.table.Resolve(name)
	if err != nil {
		return err
	}
	return b.send(ctx, dev, command{Cmd: "power", On: &on})
}

// Toggle reads the current power state and flips it.
func (b *Bridge) Toggle(ctx context.Context, name string) error {
	dev, err := b.table.Resolve(name)
	if err != nil {
		return err
	}
	state, err := b.fetchState(ctx, dev)
	if err != nil {
		return err
	}
	next := !state.On
	return b.send(ctx, dev, command{Cmd: "power", On: &next})
}

// SetColor applies a named colour, a white preset, or a hex literal.
// Current brightness is preserved; the device is powered on first.
func (b *Bridge) SetColor(ctx context.Context, name, color string) error {
	dev, err := b.table.Resolve(name)
	if err != nil {
		return err
	}
	if !dev.Capabilities.Color {
		return fmt.Errorf("device '%s' does not support color", dev.Name)
	}
	if err := b.SetPower(ctx, name, true); err != nil {
		return err
	}

	if temp, ok := whitePresets[normalizeColor(color)]; ok {
		bright := b.currentBrightness(ctx, dev)
		return b.send(ctx, dev, command{Cmd: "white", Temp: &temp, Brightness: &bright})
	}

	c, err := parseColor(color)
	if err != nil {
		return err
	}
	h, s, _ := rgbToHSV(c)
	v := float64(b.currentBrightness(ctx, dev)) / 100.0
	return b.send(ctx, dev, command{Cmd: "color", Hue: &h, Saturation: &s, Value: &v})
}

// SetBrightness sets brightness as a clamped percentage, powering the
// device on first.
func (b *Bridge) SetBrightness(ctx context.Context, name string, pct int) error {
	dev, err := b.table.Resolve(name)
	if err != nil {
		return err
	}
	if !dev.Capabilities.Brightness {
		return fmt.Errorf("device '%s' does not support brightness", dev.Name)
	}
	if err := b.SetPower(ctx, name, true); err != nil {
		return err
	}
	pct = clampPct(pct)
	return b.send(ctx, dev, command{Cmd: "brightness", Brightness: &pct})
}

// Status fetches the device state and renders it as a short spoken
// sentence fragment.
func (b *Bridge) Status(ctx context.Context, name string) (string, error) {
	dev, err := b.table.Resolve(name)
	if err != nil {
		return "", err
	}
	state, err := b.fetchState(ctx, dev)
	if err != nil {
		return "", err
	}
	if !state.On {
		return "off", nil
	}
	desc := "on"
	if state.Mode == "colour" || state.Mode == "color" {
		desc += fmt.Sprintf(" at %d%% brightness in color mode", int(math.Round(state.Value*100)))
	} else if state.Brightness > 0 {
		desc += fmt.Sprintf(" at %d%% brightness", state.Brightness)
	}
	return desc, nil
}

// currentBrightness reads the device's brightness so colour changes can
// keep it unchanged. Failures fall back to full brightness.
func (b *Bridge) currentBrightness(ctx context.Context, dev *entities.Device) int {
	state, err := b.fetchState(ctx, dev)
	if err != nil {
		b.logger.Debug("Falling back to full brightness",
			zap.String("device", dev.Name),
			zap.Error(err))
		return 100
	}
	if state.Mode == "colour" || state.Mode == "color" {
		return clampPct(int(math.Round(state.Value * 100)))
	}
	if state.Brightness > 0 {
		return clampPct(state.Brightness)
	}
	return 100
}

func (b *Bridge) send(ctx context.Context, dev *entities.Device, cmd command) error {
	base, err := b.deviceURL(dev)
	if err != nil {
		return err
	}
	body, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/v1/command", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(deviceKeyHeader, dev.Key)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("device '%s' unreachable: %w", dev.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("device '%s' rejected %s: %s (%s)",
			dev.Name, cmd.Cmd, resp.Status, bytes.TrimSpace(payload))
	}
	b.logger.Debug("Device command sent",
		zap.String("device", dev.Name),
		zap.String("cmd", cmd.Cmd))
	return nil
}

func (b *Bridge) fetchState(ctx context.Context, dev *entities.Device) (*deviceState, error) {
	base, err := b.deviceURL(dev)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/v1/status", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(deviceKeyHeader, dev.Key)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("device '%s' unreachable: %w", dev.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("device '%s' status failed: %s", dev.Name, resp.Status)
	}
	var state deviceState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("device '%s' sent a bad status document: %w", dev.Name, err)
	}
	return &state, nil
}

func (b *Bridge) deviceURL(dev *entities.Device) (string, error) {
	if b.baseURL != "" {
		return b.baseURL, nil
	}
	if dev.IP == "" {
		return "", fmt.Errorf("device '%s' has no IP; rescan the network", dev.Name)
	}
	return fmt.Sprintf("http://%s:%d", dev.IP, devicePort), nil
}

func clampPct(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
