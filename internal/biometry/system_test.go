package biometry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	canEvaluate bool
	canErr      error
	kind        Modality
	evalErr     error

	evaluated bool
	reason    string
	polls     int
}

func (d *fakeDevice) CanEvaluate(context.Context) (bool, error) {
	d.polls++
	return d.canEvaluate, d.canErr
}
func (d *fakeDevice) Kind() Modality                            { return d.kind }
func (d *fakeDevice) Evaluate(_ context.Context, reason string) error {
	d.evaluated = true
	d.reason = reason
	return d.evalErr
}

func TestSystem_Modality(t *testing.T) {
	ctx := context.Background()

	m, err := NewSystem(&fakeDevice{canEvaluate: false, kind: ModalityTouchID}, Prompts{}).Modality(ctx)
	require.NoError(t, err)
	assert.Equal(t, ModalityNone, m)

	m, err = NewSystem(&fakeDevice{canEvaluate: true, kind: ModalityTouchID}, Prompts{}).Modality(ctx)
	require.NoError(t, err)
	assert.Equal(t, ModalityTouchID, m)

	m, err = NewSystem(&fakeDevice{canEvaluate: true, kind: ModalityFaceID}, Prompts{}).Modality(ctx)
	require.NoError(t, err)
	assert.Equal(t, ModalityFaceID, m)

	m, err = NewSystem(&fakeDevice{canEvaluate: true, kind: ModalityNone}, Prompts{}).Modality(ctx)
	require.NoError(t, err)
	assert.Equal(t, ModalityNone, m)

	_, err = NewSystem(&fakeDevice{canErr: errors.New("no platform")}, Prompts{}).Modality(ctx)
	require.Error(t, err)
}

func TestSystem_EnrollmentWhenUnavailable_DoesNotPrompt(t *testing.T) {
	d := &fakeDevice{canEvaluate: false}
	ok, err := NewSystem(d, Prompts{}).RequestEnrollment(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, d.evaluated)
}

func TestSystem_EnrollmentWhenAvailable_Prompts(t *testing.T) {
	d := &fakeDevice{canEvaluate: true, kind: ModalityFaceID}
	ok, err := NewSystem(d, Prompts{}).RequestEnrollment(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, d.evaluated)
	assert.Equal(t, DefaultPrompts.FaceIDActivation, d.reason)
}

func TestSystem_ChallengeUsesModalityPrompt(t *testing.T) {
	p := Prompts{TouchIDAuth: "touch", FaceIDAuth: "face", Unrecognized: "?"}

	d := &fakeDevice{canEvaluate: true, kind: ModalityTouchID}
	_, err := NewSystem(d, p).Challenge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "touch", d.reason)

	d = &fakeDevice{canEvaluate: true, kind: ModalityFaceID}
	_, err = NewSystem(d, p).Challenge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "face", d.reason)
}

func TestSystem_ChallengeWhenUnavailable_ReturnsErrUnavailable(t *testing.T) {
	d := &fakeDevice{canEvaluate: false, kind: ModalityTouchID}
	ok, err := NewSystem(d, Prompts{}).Challenge(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	require.NotErrorIs(t, err, ErrCancelled)
	assert.False(t, ok)
	assert.False(t, d.evaluated)

	platform := errors.New("no platform")
	d = &fakeDevice{canErr: platform}
	_, err = NewSystem(d, Prompts{}).Challenge(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, platform)
	assert.False(t, d.evaluated)
}

func TestSystem_ChallengePollsDeviceOnce(t *testing.T) {
	d := &fakeDevice{canEvaluate: true, kind: ModalityFaceID}
	ok, err := NewSystem(d, Prompts{}).Challenge(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, d.polls)
}

func TestSystem_UnknownKindUsesUnrecognizedPrompt(t *testing.T) {
	d := &fakeDevice{canEvaluate: true, kind: Modality(9)}
	_, err := NewSystem(d, Prompts{}).Challenge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompts.Unrecognized, d.reason)
}

func TestSystem_ChallengeErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		evalErr    error
		wantOK     bool
		wantCancel bool
		wantErr    bool
	}{
		{name: "match", evalErr: nil, wantOK: true},
		{name: "no match", evalErr: &DeviceError{Code: CodeAuthenticationFailed}},
		{name: "user cancel", evalErr: &DeviceError{Code: CodeUserCancel}, wantCancel: true},
		{name: "app cancel", evalErr: &DeviceError{Code: CodeAppCancel}, wantCancel: true},
		{name: "system cancel", evalErr: &DeviceError{Code: CodeSystemCancel}, wantCancel: true},
		{name: "fallback", evalErr: &DeviceError{Code: CodeUserFallback}, wantCancel: true},
		{name: "passcode not set", evalErr: &DeviceError{Code: CodePasscodeNotSet}, wantCancel: true},
		{name: "not enrolled", evalErr: &DeviceError{Code: CodeNotEnrolled}, wantCancel: true},
		{name: "not available", evalErr: &DeviceError{Code: CodeNotAvailable}, wantCancel: true},
		{name: "lockout", evalErr: &DeviceError{Code: CodeLockout}, wantCancel: true},
		{name: "invalid context", evalErr: &DeviceError{Code: CodeInvalidContext}, wantErr: true},
		{name: "not interactive", evalErr: &DeviceError{Code: CodeNotInteractive, Msg: "headless"}, wantErr: true},
		{name: "foreign error", evalErr: errors.New("sensor on fire"), wantErr: true},
		{name: "caller cancelled", evalErr: context.Canceled, wantCancel: true},
		{name: "caller timeout", evalErr: context.DeadlineExceeded, wantCancel: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDevice{canEvaluate: true, kind: ModalityTouchID, evalErr: tt.evalErr}
			ok, err := NewSystem(d, Prompts{}).Challenge(context.Background())
			assert.Equal(t, tt.wantOK, ok)
			switch {
			case tt.wantCancel:
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrCancelled), "got %v", err)
			case tt.wantErr:
				require.Error(t, err)
				assert.False(t, errors.Is(err, ErrCancelled), "got %v", err)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestModality_StringAndParse(t *testing.T) {
	for _, m := range []Modality{ModalityNone, ModalityTouchID, ModalityFaceID} {
		got, err := ParseModality(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseModality("")
	require.NoError(t, err)
	assert.Equal(t, ModalityNone, got)

	_, err = ParseModality("iris")
	require.Error(t, err)
}

func TestDeviceError_Message(t *testing.T) {
	assert.Contains(t, (&DeviceError{Code: CodeLockout}).Error(), "9")
	assert.Contains(t, (&DeviceError{Code: CodeLockout, Msg: "too many"}).Error(), "too many")
}
