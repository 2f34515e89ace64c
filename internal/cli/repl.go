package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	hasUser() bool
	Register(ctx context.Context) error
	Use(ctx context.Context, id string) error
	Users(ctx context.Context) error
	Login(ctx context.Context) error
	Bio(ctx context.Context) error
	Enroll(ctx context.Context) error
	Status(ctx context.Context) error
	Attempts(ctx context.Context) error
	Methods(ctx context.Context) error
	Passwd(ctx context.Context) error
	Logout(ctx context.Context) error
	Delete(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// Commands that act on the selected user are rejected until one is chosen
// with register or use. Errors returned by handlers are printed and the loop
// continues. The loop exits on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ak> %s > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if err := ctx.Err(); err != nil {
			return
		}

		switch cmd {
		case "exit", "quit":
			return
		case "help":
			printlnFn("Available commands: register, use <id>, users, login, bio, enroll, status, attempts, methods, passwd, logout, delete, exit")
			continue
		case "register":
			report(a.Register(ctx))
			continue
		case "use":
			if len(parts) != 2 {
				printlnFn("Usage: use <id>")
				continue
			}
			report(a.Use(ctx, parts[1]))
			continue
		case "users":
			report(a.Users(ctx))
			continue
		case "enroll":
			report(a.Enroll(ctx))
			continue
		}

		var handler func(context.Context) error
		switch cmd {
		case "login":
			handler = a.Login
		case "bio":
			handler = a.Bio
		case "status":
			handler = a.Status
		case "attempts":
			handler = a.Attempts
		case "methods":
			handler = a.Methods
		case "passwd":
			handler = a.Passwd
		case "logout":
			handler = a.Logout
		case "delete":
			handler = a.Delete
		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if !a.hasUser() {
			printlnFn("No user selected. Use register or use <id> first.")
			continue
		}
		report(handler(ctx))
	}
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", err)
	}
}
