package ports

import "context"

// AudioDevice describes an available audio input or output device.
type AudioDevice struct {
	ID        string
	Name      string
	IsDefault bool
}

// AudioDeviceProber lists audio devices at validation time.
type AudioDeviceProber interface {
	InputDevices(ctx context.Context) ([]AudioDevice, error)
	OutputDevices(ctx context.Context) ([]AudioDevice, error)
}
