package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests provide a stub.
type execIface interface {
	New(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	List(ctx context.Context) error
	Drafts(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
}

const helpText = "Available commands: new, edit <id>, (l)ist, drafts, show <id>, delete <id>, sync, status, exit"

// runREPL reads commands from reader until EOF, "exit" or "quit". Command
// errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "cv %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		withID := func(usage string, fn func(context.Context, string) error) error {
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage:", usage)
				return nil
			}
			return fn(ctx, args[0])
		}

		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText)
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		switch cmd {
		case "new":
			err = a.New(ctx)
		case "edit":
			err = withID("edit <id>", a.Edit)
		case "l", "list":
			err = a.List(ctx)
		case "drafts":
			err = a.Drafts(ctx)
		case "show":
			err = withID("show <id>", a.Show)
		case "delete":
			err = withID("delete <id>", a.Delete)
		case "sync":
			err = a.Sync(ctx)
		case "status":
			err = a.Status(ctx)
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
		if err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
	}
}
