package devices

import (
	"context"
	"fmt"
	"sync"

	"github.com/emberhome/ember/domain/repositories"
)

// MockController keeps device state in memory. It backs development
// setups without real hardware and the interpreter tests.
type MockController struct {
	mu    sync.Mutex
	power map[string]bool
	calls []string

	// FailFor makes every operation on the named device error.
	FailFor map[string]bool
}

var _ repositories.DeviceController = (*MockController)(nil)

func NewMockController() *MockController {
	return &MockController{
		power:   make(map[string]bool),
		FailFor: make(map[string]bool),
	}
}

func (m *MockController) SetPower(_ context.Context, name string, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(name, "power"); err != nil {
		return err
	}
	m.power[name] = on
	m.calls = append(m.calls, fmt.Sprintf("power %s %t", name, on))
	return nil
}

func (m *MockController) Toggle(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(name, "toggle"); err != nil {
		return err
	}
	m.power[name] = !m.power[name]
	m.calls = append(m.calls, fmt.Sprintf("toggle %s", name))
	return nil
}

func (m *MockController) SetColor(_ context.Context, name, color string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(name, "color"); err != nil {
		return err
	}
	m.power[name] = true
	m.calls = append(m.calls, fmt.Sprintf("color %s %s", name, color))
	return nil
}

func (m *MockController) SetBrightness(_ context.Context, name string, pct int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(name, "brightness"); err != nil {
		return err
	}
	m.power[name] = true
	m.calls = append(m.calls, fmt.Sprintf("brightness %s %d", name, pct))
	return nil
}

func (m *MockController) Status(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(name, "status"); err != nil {
		return "", err
	}
	if m.power[name] {
		return "on", nil
	}
	return "off", nil
}

// Calls returns every recorded operation in order.
func (m *MockController) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockController) failure(name, op string) error {
	if m.FailFor[name] {
		return fmt.Errorf("mock %s failure for '%s'", op, name)
	}
	return nil
}
