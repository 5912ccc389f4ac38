// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/domain/session/ports"
)

var (
	ErrNoInputDevice  = errors.New("no microphone available")
	ErrNoOutputDevice = errors.New("no system audio device available")
)

// DeviceResolution is the outcome of resolving audio devices.
type DeviceResolution struct {
	Audio model.AudioConfig
	// Warnings lists devices that were replaced by a default.
	Warnings []string
}

// ResolveAudioDevices checks that the configured audio devices exist. A
// missing device falls back to the default device (or the first one listed)
// with a warning; validation fails only when no device of the needed kind exists.
func ResolveAudioDevices(ctx context.Context, prober ports.AudioDeviceProber, cfg model.AudioConfig) (DeviceResolution, error) {
	res := DeviceResolution{Audio: cfg}
	if !cfg.Enabled || prober == nil {
		return res, nil
	}

	if cfg.SourceType.UsesMicrophone() {
		devs, err := prober.InputDevices(ctx)
		if err != nil {
			return res, fmt.Errorf("list input devices: %w", err)
		}
		id, warn, err := pick(devs, cfg.MicDeviceID, "microphone", ErrNoInputDevice)
		if err != nil {
			return res, err
		}
		res.Audio.MicDeviceID = id
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
		}
	}

	if cfg.SourceType.UsesSystemAudio() {
		devs, err := prober.OutputDevices(ctx)
		if err != nil {
			return res, fmt.Errorf("list output devices: %w", err)
		}
		id, warn, err := pick(devs, cfg.SystemAudioDeviceID, "system audio device", ErrNoOutputDevice)
		if err != nil {
			return res, err
		}
		res.Audio.SystemAudioDeviceID = id
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
		}
	}
	return res, nil
}

// pick returns the device id to use. An empty requested id means "default"
// and is kept empty.
func pick(devs []ports.AudioDevice, requested, label string, none error) (string, string, error) {
	if len(devs) == 0 {
		return "", "", none
	}
	if requested == "" {
		return "", "", nil
	}
	for _, d := range devs {
		if d.ID == requested {
			return requested, "", nil
		}
	}
	fallback := devs[0]
	for _, d := range devs {
		if d.IsDefault {
			fallback = d
			break
		}
	}
	return fallback.ID, fmt.Sprintf("%s %q not found, using %q", label, requested, fallback.Name), nil
}
