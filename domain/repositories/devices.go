package repositories

import "context"

// DeviceController drives smart devices by name. Every call may fail
// independently; callers surface failures per device and keep going.
type DeviceController interface {
	SetPower(ctx context.Context, name string, on bool) error
	Toggle(ctx context.Context, name string) error
	SetColor(ctx context.Context, name, color string) error
	SetBrightness(ctx context.Context, name string, pct int) error
	Status(ctx context.Context, name string) (string, error)
}
