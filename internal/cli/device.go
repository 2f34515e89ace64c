package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/accesskeeper/internal/biometry"
)

// consoleDevice stands in for a biometric sensor: the user answers each
// challenge with y (match), n (no match) or c (cancel).
type consoleDevice struct {
	reader *bufio.Reader
	out    io.Writer
	kind   biometry.Modality
}

func newConsoleDevice(reader *bufio.Reader, out io.Writer, kind biometry.Modality) *consoleDevice {
	return &consoleDevice{reader: reader, out: out, kind: kind}
}

func (d *consoleDevice) CanEvaluate(context.Context) (bool, error) {
	return d.kind != biometry.ModalityNone, nil
}

func (d *consoleDevice) Kind() biometry.Modality { return d.kind }

func (d *consoleDevice) Evaluate(ctx context.Context, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	answer, err := GetSimpleText(d.reader, fmt.Sprintf("[%s] %s (y/n/c)", d.kind, reason), d.out)
	if err != nil {
		return &biometry.DeviceError{Code: biometry.CodeSystemCancel, Msg: err.Error()}
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return nil
	case "n", "no":
		return &biometry.DeviceError{Code: biometry.CodeAuthenticationFailed}
	case "c", "cancel", "":
		return &biometry.DeviceError{Code: biometry.CodeUserCancel}
	default:
		return &biometry.DeviceError{Code: biometry.CodeUserFallback, Msg: "unrecognised answer " + answer}
	}
}
