package biometry

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode classifies a failed device evaluation.
type ErrorCode int

const (
	CodeAuthenticationFailed ErrorCode = iota + 1
	CodeUserCancel
	CodeAppCancel
	CodeSystemCancel
	CodeUserFallback
	CodePasscodeNotSet
	CodeNotEnrolled
	CodeNotAvailable
	CodeLockout
	CodeInvalidContext
	CodeNotInteractive
)

// DeviceError is returned by Device.Evaluate when no match was made.
type DeviceError struct {
	Code ErrorCode
	Msg  string
}

func (e *DeviceError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("biometric device error %d: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("biometric device error %d", e.Code)
}

// Device is the low-level sensor binding the System provider drives.
type Device interface {
	// CanEvaluate reports whether biometric evaluation is possible right now.
	CanEvaluate(ctx context.Context) (bool, error)
	// Kind reports the sensor type. Only meaningful when CanEvaluate is true.
	Kind() Modality
	// Evaluate shows reason to the user and blocks until a decision. A nil
	// error means the user matched.
	Evaluate(ctx context.Context, reason string) error
}

// Prompts are the reasons shown to the user for each modality.
type Prompts struct {
	TouchIDActivation string
	TouchIDAuth       string
	FaceIDActivation  string
	FaceIDAuth        string
	Unrecognized      string
}

// DefaultPrompts is used when System is built with zero Prompts.
var DefaultPrompts = Prompts{
	TouchIDActivation: "Please activate Touch ID",
	TouchIDAuth:       "Login with Touch ID",
	FaceIDActivation:  "Please activate Face ID",
	FaceIDAuth:        "Login with Face ID",
	Unrecognized:      "Unrecognized biometry type",
}

// System is a Provider backed by a Device.
type System struct {
	device  Device
	prompts Prompts
}

func NewSystem(device Device, prompts Prompts) *System {
	if prompts == (Prompts{}) {
		prompts = DefaultPrompts
	}
	return &System{device: device, prompts: prompts}
}

func (s *System) Modality(ctx context.Context) (Modality, error) {
	ok, err := s.device.CanEvaluate(ctx)
	if err != nil {
		return ModalityNone, err
	}
	if !ok {
		return ModalityNone, nil
	}
	return s.device.Kind(), nil
}

// RequestEnrollment shows the activation prompt. With no usable sensor it
// returns false without prompting.
func (s *System) RequestEnrollment(ctx context.Context) (bool, error) {
	m, err := s.Modality(ctx)
	if err != nil {
		return false, err
	}
	if m == ModalityNone {
		return false, nil
	}
	reason := s.prompts.Unrecognized
	switch m {
	case ModalityTouchID:
		reason = s.prompts.TouchIDActivation
	case ModalityFaceID:
		reason = s.prompts.FaceIDActivation
	}
	return s.evaluate(ctx, reason)
}

// Challenge polls the sensor once and runs the evaluation. A sensor that
// cannot evaluate yields ErrUnavailable rather than a failed match.
func (s *System) Challenge(ctx context.Context) (bool, error) {
	m, err := s.Modality(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if m == ModalityNone {
		return false, ErrUnavailable
	}
	reason := s.prompts.Unrecognized
	switch m {
	case ModalityTouchID:
		reason = s.prompts.TouchIDAuth
	case ModalityFaceID:
		reason = s.prompts.FaceIDAuth
	}
	return s.evaluate(ctx, reason)
}

func (s *System) evaluate(ctx context.Context, reason string) (bool, error) {
	err := s.device.Evaluate(ctx, reason)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	var de *DeviceError
	if !errors.As(err, &de) {
		return false, err
	}
	switch de.Code {
	case CodeAuthenticationFailed:
		return false, nil
	case CodeUserCancel, CodeAppCancel, CodeSystemCancel, CodeUserFallback,
		CodePasscodeNotSet, CodeNotEnrolled, CodeNotAvailable, CodeLockout:
		return false, fmt.Errorf("%w: %v", ErrCancelled, de)
	default:
		return false, err
	}
}
