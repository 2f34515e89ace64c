package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accesskeeper/internal/biometry"
)

func TestConsoleDevice_Capabilities(t *testing.T) {
	ctx := context.Background()

	none := newConsoleDevice(rdr(""), &bytes.Buffer{}, biometry.ModalityNone)
	ok, err := none.CanEvaluate(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	face := newConsoleDevice(rdr(""), &bytes.Buffer{}, biometry.ModalityFaceID)
	ok, err = face.CanEvaluate(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, biometry.ModalityFaceID, face.Kind())
}

func TestConsoleDevice_Evaluate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  biometry.ErrorCode
	}{
		{"yes", "y\n", 0},
		{"yes long", "YES\n", 0},
		{"no", "n\n", biometry.CodeAuthenticationFailed},
		{"cancel", "c\n", biometry.CodeUserCancel},
		{"empty", "\n", biometry.CodeUserCancel},
		{"other", "maybe\n", biometry.CodeUserFallback},
		{"eof", "", biometry.CodeSystemCancel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			d := newConsoleDevice(rdr(tt.input), &out, biometry.ModalityTouchID)

			err := d.Evaluate(context.Background(), "Unlock")
			assert.Contains(t, out.String(), "[touchid] Unlock (y/n/c)")
			if tt.code == 0 {
				require.NoError(t, err)
				return
			}
			var de *biometry.DeviceError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestConsoleDevice_EvaluateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	d := newConsoleDevice(rdr("y\n"), &out, biometry.ModalityFaceID)
	err := d.Evaluate(ctx, "Unlock")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}
