package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL drives.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Hello(ctx context.Context) error
	Me(ctx context.Context) error
	Filter(ctx context.Context) error
	Balance(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads one command per line and dispatches it to a. It returns on
// EOF or "exit"/"quit". Command errors are reported and the loop continues.
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, hello, me, filter, balance, logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "gk> %s > ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: hello, me, filter, balance, logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: register, login, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "hello":
			cmdErr = a.Hello(ctx)

		case "me":
			cmdErr = a.Me(ctx)

		case "filter":
			cmdErr = a.Filter(ctx)

		case "balance":
			cmdErr = a.Balance(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(out, describe(cmdErr))
		}
	}
}
