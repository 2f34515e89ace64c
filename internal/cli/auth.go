package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accesskeeper/internal/access"
	"github.com/dmitrijs2005/accesskeeper/internal/common"
)

// Login authenticates the selected user with a password.
func (a *App) Login(ctx context.Context) error {
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	st, err := a.service.Authenticate(ctx, a.current, access.PasswordRequest(string(password)))
	if err != nil {
		return err
	}
	printStatus(st)
	return nil
}

// Bio authenticates the selected user with the configured biometric device.
// A cancelled challenge leaves the attempt counter untouched.
func (a *App) Bio(ctx context.Context) error {
	ok, err := a.service.IsSupportedMethod(ctx, access.MethodBiometry)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Biometry is not available on this device.")
		return nil
	}

	st, err := a.service.Authenticate(ctx, a.current, access.BiometryRequest())
	switch {
	case errors.Is(err, common.ErrBiometryCancelled):
		printlnFn("Cancelled.")
		printStatus(st)
		return nil
	case err != nil:
		return err
	}
	printStatus(st)
	return nil
}

// Enroll shows the biometric activation prompt.
func (a *App) Enroll(ctx context.Context) error {
	ok, err := a.service.RequestBiometryAccess(ctx)
	if err != nil {
		return err
	}
	if ok {
		printlnFn("Biometry enabled.")
	} else {
		printlnFn("Biometry not enabled.")
	}
	return nil
}

// Status prints the selected user's authentication status.
func (a *App) Status(ctx context.Context) error {
	st, err := a.service.AuthenticationStatus(ctx, a.current)
	if err != nil {
		return err
	}
	printStatus(st)
	return nil
}

// Attempts prints how many failed attempts remain before a block.
func (a *App) Attempts(ctx context.Context) error {
	n, err := a.service.AttemptsRemaining(ctx, a.current)
	if err != nil {
		return err
	}
	printlnFn("Attempts remaining:", n)
	return nil
}

// Methods prints, per method, whether the device supports it and whether
// the selected user may use it now.
func (a *App) Methods(ctx context.Context) error {
	for _, m := range []access.Method{access.MethodPassword, access.MethodTouchID, access.MethodFaceID} {
		supported, err := a.service.IsSupportedMethod(ctx, m)
		if err != nil {
			return err
		}
		possible, err := a.service.IsPossibleMethod(ctx, a.current, m)
		if err != nil {
			return err
		}
		printlnFn(fmt.Sprintf("%-8s supported=%t possible=%t", m, supported, possible))
	}
	return nil
}

// Logout ends the selected user's session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.service.Logout(ctx, a.current); err != nil {
		return err
	}
	printlnFn("Logged out.")
	return nil
}

func printStatus(st access.Status) {
	printlnFn("Status:", st.String())
}
