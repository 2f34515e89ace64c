package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/accesskeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var (
	errPasswordMismatch = errors.New("passwords do not match")
	errNotAuthenticated = errors.New("login first")
)

// readNewPassword asks for a password twice. The caller wipes the result.
func (a *App) readNewPassword() ([]byte, error) {
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return nil, err
	}
	repeat, err := getPassword(a.reader, "Repeat password", a.out)
	if err != nil {
		common.WipeByteArray(password)
		return nil, err
	}
	defer common.WipeByteArray(repeat)

	if !bytes.Equal(password, repeat) {
		common.WipeByteArray(password)
		return nil, errPasswordMismatch
	}
	return password, nil
}

// Register creates a user with a new password and selects it.
func (a *App) Register(ctx context.Context) error {
	password, err := a.readNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.service.RegisterUser(ctx, string(password))
	if err != nil {
		return err
	}

	a.current = id
	printlnFn("Registered user", id.String())
	return nil
}

// Use selects an existing user by id.
func (a *App) Use(ctx context.Context, arg string) error {
	id, err := uuid.Parse(arg)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", arg, err)
	}
	if _, err := a.service.User(ctx, id); err != nil {
		return err
	}
	a.current = id
	return nil
}

// Users prints every stored user with its status. The selected user is marked with *.
func (a *App) Users(ctx context.Context) error {
	list, err := a.service.Users(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printlnFn("No users.")
		return nil
	}
	for _, u := range list {
		st, err := a.service.AuthenticationStatus(ctx, u.ID)
		if err != nil {
			return err
		}
		mark := " "
		if u.ID == a.current {
			mark = "*"
		}
		printlnFn(fmt.Sprintf("%s %s %s", mark, u.ID, st))
	}
	return nil
}

// requireSession fails unless the selected user has a valid session.
func (a *App) requireSession(ctx context.Context) error {
	st, err := a.service.AuthenticationStatus(ctx, a.current)
	if err != nil {
		return err
	}
	if !st.IsAuthenticated() {
		return errNotAuthenticated
	}
	return nil
}

// Passwd replaces the password of the selected, authenticated user.
func (a *App) Passwd(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	password, err := a.readNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.service.UpdatePassword(ctx, a.current, string(password)); err != nil {
		return err
	}
	printlnFn("Password updated.")
	return nil
}

// Delete removes the selected, authenticated user after confirmation.
func (a *App) Delete(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete user %s? Type yes to confirm", a.current), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "yes") {
		printlnFn("Cancelled.")
		return nil
	}

	if err := a.service.DeleteUser(ctx, a.current); err != nil {
		return err
	}
	printlnFn("Deleted user", a.current.String())
	a.current = uuid.Nil
	return nil
}
