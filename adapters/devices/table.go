package devices

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/entities"
)

// Table is the static device registry loaded from devices.json. It is
// built once at startup and only read afterwards.
type Table struct {
	devices []entities.Device
	byName  map[string]*entities.Device
	byID    map[string]*entities.Device
}

// LoadTable reads and indexes the device table. Entries that fail
// validation are skipped with a warning rather than aborting startup.
func LoadTable(fs afero.Fs, path string, logger *zap.Logger) (*Table, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read device table %s: %w", path, err)
	}

	var devices []entities.Device
	if err := json.Unmarshal(raw, &devices); err != nil {
		return nil, fmt.Errorf("failed to parse device table %s: %w", path, err)
	}

	table := &Table{
		byName: make(map[string]*entities.Device),
		byID:   make(map[string]*entities.Device),
	}
	for i := range devices {
		d := devices[i]
		if err := d.Validate(); err != nil {
			logger.Warn("Skipping invalid device entry",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		if d.Version == "" {
			d.Version = "3.3"
		}
		table.devices = append(table.devices, d)
		entry := &table.devices[len(table.devices)-1]
		table.byID[d.ID] = entry
		table.byName[strings.ToLower(d.Name)] = entry
	}

	logger.Info("Device table loaded",
		zap.String("path", path),
		zap.Int("devices", len(table.devices)))
	return table, nil
}

// Resolve looks a device up by spoken name first, then by id.
func (t *Table) Resolve(nameOrID string) (*entities.Device, error) {
	if d, ok := t.byName[strings.ToLower(strings.TrimSpace(nameOrID))]; ok {
		return d, nil
	}
	if d, ok := t.byID[nameOrID]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("device '%s' not found", nameOrID)
}

// All returns the table contents in load order.
func (t *Table) All() []entities.Device {
	return t.devices
}

// Names returns every device name, lowercased, for command matching.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.devices))
	for i := range t.devices {
		names = append(names, strings.ToLower(t.devices[i].Name))
	}
	return names
}
