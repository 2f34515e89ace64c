package access

import (
	"strings"

	"github.com/dmitrijs2005/accesskeeper/internal/biometry"
)

// Method is a set of authentication methods.
type Method uint8

const (
	MethodPassword Method = 1 << iota
	MethodTouchID
	MethodFaceID

	MethodBiometry = MethodTouchID | MethodFaceID
)

// Contains reports whether every method in o is in m.
func (m Method) Contains(o Method) bool { return o != 0 && m&o == o }

// Intersects reports whether m and o share at least one method.
func (m Method) Intersects(o Method) bool { return m&o != 0 }

func (m Method) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	if m.Contains(MethodPassword) {
		parts = append(parts, "password")
	}
	if m.Contains(MethodBiometry) {
		parts = append(parts, "biometry")
	} else if m.Contains(MethodTouchID) {
		parts = append(parts, "touchid")
	} else if m.Contains(MethodFaceID) {
		parts = append(parts, "faceid")
	}
	return strings.Join(parts, "|")
}

// MethodForModality maps a device modality onto the method it enables.
func MethodForModality(m biometry.Modality) Method {
	switch m {
	case biometry.ModalityTouchID:
		return MethodTouchID
	case biometry.ModalityFaceID:
		return MethodFaceID
	default:
		return 0
	}
}
