// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package validation checks session configs before any capture starts.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ManuGH/recap/internal/domain/session/model"
)

// ErrNoModality is reported when every recording type is disabled.
var ErrNoModality = errors.New("at least one recording type must be enabled (screenshots, audio, or video)")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validate = v
	})
	return validate
}

// FieldError is one failed constraint.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// ConfigError collects every problem found in a session config.
type ConfigError struct {
	Issues []FieldError
	// NoModality is set when every modality is disabled.
	NoModality bool
}

func (e *ConfigError) Error() string {
	msgs := make([]string, 0, len(e.Issues)+1)
	if e.NoModality {
		msgs = append(msgs, ErrNoModality.Error())
	}
	for _, is := range e.Issues {
		msgs = append(msgs, is.Message)
	}
	if len(msgs) == 0 {
		return "invalid session config"
	}
	return strings.Join(msgs, "; ")
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrNoModality && e.NoModality
}

// ValidateConfig checks name, modality selection and the parameter bounds of
// enabled modalities. Disabled modalities are not range checked.
func ValidateConfig(cfg model.SessionConfig) error {
	v := instance()
	out := &ConfigError{}

	for _, fe := range collect(v.StructPartial(cfg, "Name")) {
		fe.Message = nameMessage(fe)
		out.Issues = append(out.Issues, fe)
	}

	if len(cfg.EnabledModalities()) == 0 {
		out.NoModality = true
	}
	if cfg.Audio.Enabled {
		out.Issues = append(out.Issues, prefixed("audioConfig", collect(v.Struct(cfg.Audio)))...)
	}
	if cfg.Video.Enabled {
		out.Issues = append(out.Issues, prefixed("videoConfig", collect(v.Struct(cfg.Video)))...)
		if cfg.Video.SourceType == model.VideoSourceWindow && len(cfg.Video.WindowIDs) == 0 {
			out.Issues = append(out.Issues, FieldError{
				Field: "videoConfig.windowIds", Tag: "required",
				Message: "videoConfig.windowIds is required for window capture",
			})
		}
	}

	if len(out.Issues) == 0 && !out.NoModality {
		return nil
	}
	return out
}

func collect(err error) []FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out = append(out, FieldError{Field: field, Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}

func prefixed(prefix string, errs []FieldError) []FieldError {
	for i := range errs {
		errs[i].Field = prefix + "." + errs[i].Field
		errs[i].Message = message(errs[i])
	}
	return errs
}

func nameMessage(fe FieldError) string {
	if fe.Tag == "max" {
		return fmt.Sprintf("session name must be at most %s characters", fe.Param)
	}
	return "session name is required"
}

func message(fe FieldError) string {
	switch fe.Tag {
	case "notblank", "required":
		return fmt.Sprintf("%s is required", fe.Field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field, fe.Param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field, fe.Param)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field, fe.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field, fe.Param)
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field, fe.Tag)
}
