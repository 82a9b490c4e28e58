package entities

import (
	"errors"
	"strings"
)

// Capabilities flags what a device can do beyond plain power switching.
type Capabilities struct {
	Power      bool `json:"power"`
	Color      bool `json:"color"`
	Brightness bool `json:"brightness"`
}

// Device is one entry in the static device table. The table is loaded
// once at startup and never mutated afterwards, so it is safe for
// concurrent reads.
type Device struct {
	Name         string       `json:"name"`
	ID           string       `json:"id"`
	IP           string       `json:"ip,omitempty"`
	Key          string       `json:"key,omitempty"`
	Version      string       `json:"version,omitempty"`
	Capabilities Capabilities `json:"capabilities"`
}

func (d *Device) Validate() error {
	if d.Name == "" {
		return errors.New("device name is required")
	}
	if d.ID == "" {
		return errors.New("device id is required")
	}
	return nil
}

// InRoom reports whether the device name mentions the given room.
func (d *Device) InRoom(room string) bool {
	if room == "" {
		return false
	}
	return strings.Contains(strings.ToLower(d.Name), strings.ToLower(strings.TrimSpace(room)))
}
