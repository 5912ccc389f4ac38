package ports

import "context"

// PermissionKind names an OS capture permission.
type PermissionKind string

const (
	PermissionScreenRecording PermissionKind = "screen_recording"
	PermissionMicrophone      PermissionKind = "microphone"
)

// Label is the human readable name used in error messages.
func (k PermissionKind) Label() string {
	switch k {
	case PermissionScreenRecording:
		return "screen recording"
	case PermissionMicrophone:
		return "microphone"
	}
	return string(k)
}

// PermissionChecker queries OS-level capture permissions.
type PermissionChecker interface {
	HasScreenRecordingPermission(ctx context.Context) (bool, error)
	HasMicrophonePermission(ctx context.Context) (bool, error)
	RequestMicrophonePermission(ctx context.Context) (bool, error)
}

// PermissionInvalidator is implemented by checkers that cache results.
type PermissionInvalidator interface {
	Invalidate(kind PermissionKind)
	InvalidateAll()
}
