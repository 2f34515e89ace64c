// Package biometry abstracts the platform biometric sensor.
//
// A Provider answers which modality is available, asks the user to enroll
// (activate) biometric login and runs a challenge. Challenge results are
// three-way: true (match), false (no match, counts as a failed attempt) and
// ErrCancelled (user, application or system backed out; never counted).
package biometry

import (
	"context"
	"errors"
)

// Modality is the kind of biometric sensor present on the device.
type Modality int

const (
	ModalityNone Modality = iota
	ModalityTouchID
	ModalityFaceID
)

func (m Modality) String() string {
	switch m {
	case ModalityTouchID:
		return "touchid"
	case ModalityFaceID:
		return "faceid"
	default:
		return "none"
	}
}

// ParseModality is the inverse of Modality.String.
func ParseModality(s string) (Modality, error) {
	switch s {
	case "", "none":
		return ModalityNone, nil
	case "touchid":
		return ModalityTouchID, nil
	case "faceid":
		return ModalityFaceID, nil
	default:
		return ModalityNone, errors.New("unknown biometry modality: " + s)
	}
}

// ErrCancelled signals that a challenge or enrollment prompt was abandoned
// without a match decision.
var ErrCancelled = errors.New("biometric authentication cancelled")

// ErrUnavailable is returned by Challenge when no sensor can evaluate. It is
// not a failed match.
var ErrUnavailable = errors.New("biometric sensor unavailable")

// Provider is the capability contract consumed by the access service.
// Challenge may block on user interaction and must honour ctx.
type Provider interface {
	Modality(ctx context.Context) (Modality, error)
	RequestEnrollment(ctx context.Context) (bool, error)
	Challenge(ctx context.Context) (bool, error)
}
