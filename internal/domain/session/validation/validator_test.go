// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/domain/session/ports"
)

func validConfig() model.SessionConfig {
	return model.SessionConfig{
		Name:               "Deep work",
		ScreenshotsEnabled: true,
		Audio: model.AudioConfig{
			Enabled: true, SourceType: model.AudioSourceMicrophone,
			MicVolume: 0.8, SystemAudioVolume: 0.5, Balance: 50,
		},
		Video: model.VideoConfig{
			Enabled: true, SourceType: model.VideoSourceScreen, Quality: model.QualityHigh,
			FPS: 30, Resolution: model.Resolution{Width: 1920, Height: 1080},
		},
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	require.NoError(t, ValidateConfig(validConfig()))
}

func TestValidateConfig_NoModality(t *testing.T) {
	cfg := model.SessionConfig{Name: "x"}
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoModality)
	assert.Contains(t, err.Error(), "at least one recording type")
}

func TestValidateConfig_Name(t *testing.T) {
	cfg := validConfig()
	cfg.Name = "   "
	require.ErrorContains(t, ValidateConfig(cfg), "session name is required")

	cfg.Name = strings.Repeat("a", 256)
	require.ErrorContains(t, ValidateConfig(cfg), "at most 255 characters")

	cfg.Name = strings.Repeat("a", 255)
	require.NoError(t, ValidateConfig(cfg))
}

func TestValidateConfig_Bounds(t *testing.T) {
	cfg := validConfig()
	cfg.Audio.MicVolume = 1.5
	cfg.Audio.Balance = 101
	cfg.Video.FPS = 5
	cfg.Video.Resolution = model.Resolution{Width: 320, Height: 240}

	err := ValidateConfig(cfg)
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))

	fields := map[string]bool{}
	for _, is := range ce.Issues {
		fields[is.Field] = true
	}
	assert.True(t, fields["audioConfig.micVolume"])
	assert.True(t, fields["audioConfig.balance"])
	assert.True(t, fields["videoConfig.fps"])
	assert.True(t, fields["videoConfig.resolution.width"])
	assert.True(t, fields["videoConfig.resolution.height"])
	assert.Contains(t, err.Error(), "audioConfig.micVolume must be at most 1")
}

func TestValidateConfig_DisabledModalitiesNotChecked(t *testing.T) {
	cfg := model.SessionConfig{
		Name:               "only screenshots",
		ScreenshotsEnabled: true,
		Audio:              model.AudioConfig{Enabled: false, MicVolume: 9},
		Video:              model.VideoConfig{Enabled: false, FPS: 1},
	}
	require.NoError(t, ValidateConfig(cfg))
}

func TestValidateConfig_WindowCaptureNeedsWindow(t *testing.T) {
	cfg := validConfig()
	cfg.Video.SourceType = model.VideoSourceWindow
	require.ErrorContains(t, ValidateConfig(cfg), "windowIds")
}

type stubProber struct {
	inputs, outputs []ports.AudioDevice
	err             error
}

func (s stubProber) InputDevices(context.Context) ([]ports.AudioDevice, error)  { return s.inputs, s.err }
func (s stubProber) OutputDevices(context.Context) ([]ports.AudioDevice, error) { return s.outputs, s.err }

func TestResolveAudioDevices_FallbackToDefault(t *testing.T) {
	prober := stubProber{inputs: []ports.AudioDevice{
		{ID: "usb", Name: "USB Mic"},
		{ID: "builtin", Name: "Built-in Mic", IsDefault: true},
	}}
	cfg := validConfig().Audio
	cfg.MicDeviceID = "unplugged"

	res, err := ResolveAudioDevices(context.Background(), prober, cfg)
	require.NoError(t, err)
	assert.Equal(t, "builtin", res.Audio.MicDeviceID)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "unplugged")
}

func TestResolveAudioDevices_KeepsPresentDevice(t *testing.T) {
	prober := stubProber{inputs: []ports.AudioDevice{{ID: "usb"}}}
	cfg := validConfig().Audio
	cfg.MicDeviceID = "usb"

	res, err := ResolveAudioDevices(context.Background(), prober, cfg)
	require.NoError(t, err)
	assert.Equal(t, "usb", res.Audio.MicDeviceID)
	assert.Empty(t, res.Warnings)
}

func TestResolveAudioDevices_NoDevicesFails(t *testing.T) {
	_, err := ResolveAudioDevices(context.Background(), stubProber{}, validConfig().Audio)
	assert.ErrorIs(t, err, ErrNoInputDevice)

	cfg := validConfig().Audio
	cfg.SourceType = model.AudioSourceSystem
	_, err = ResolveAudioDevices(context.Background(), stubProber{inputs: []ports.AudioDevice{{ID: "m"}}}, cfg)
	assert.ErrorIs(t, err, ErrNoOutputDevice)
}

func TestResolveAudioDevices_DisabledAudioSkipsProbe(t *testing.T) {
	res, err := ResolveAudioDevices(context.Background(), stubProber{err: errors.New("boom")}, model.AudioConfig{})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
}
