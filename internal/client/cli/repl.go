package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Profile(ctx context.Context) error
	Status(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line from reader until EOF, "exit" or
// "quit".
//
//	Not logged in: help, login, status, exit | quit
//	Logged in:     help, profile, status, logout, exit | quit
//
// Errors returned by handlers are ignored; handlers report to the user
// themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "gophauth %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: profile, status, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: login, status, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "profile", "me":
			_ = a.Profile(ctx)

		case "status":
			_ = a.Status(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
