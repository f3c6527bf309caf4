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
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Enable(ctx context.Context, args []string) error
	Disable(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Take(ctx context.Context, args []string) error
	Skip(ctx context.Context, args []string) error
	Snooze(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
	Settings(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Backup(ctx context.Context) error
	Backups(ctx context.Context) error
	Restore(ctx context.Context, args []string) error
	Cleanup(ctx context.Context) error
	Check(ctx context.Context) error
}

const helpText = `Available commands:
  add                          register a medication
  list                         list medications
  enable | disable <med>       toggle a medication
  delete <med> [HH:MM slot]    delete a medication or one reminder time
  take / skip [med]            resolve a reminder
  snooze [med] [minutes]       postpone a reminder
  history [med] [from] [to]    response history (dates as YYYY-MM-DD)
  stats [med]                  adherence statistics
  settings                     edit application settings
  export | import <file>       move all data as JSON
  backup | backups | restore <key>
  cleanup                      drop expired records and orphan delays
  check                        re-evaluate reminders right now
  exit | quit`

// runREPL starts a read-eval-print loop. It reads a line from the provided
// reader, parses the first token as the command, and dispatches to methods
// on a. Unknown commands are reported back to the user. The loop exits on
// EOF or when the user types "exit" or "quit".
//
// The reader is the same one the interactive prompts (add, delete,
// settings) read from, so a command and the prompt answers that follow it
// consume one shared stream; a buffered side-channel would read ahead and
// starve the prompts on piped input.
//
// Errors returned by command handlers are printed and the loop continues;
// a failed command must never take the application down.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		fmt.Print("med> ")
		line, readErr := reader.ReadString('\n')
		if readErr != nil && strings.TrimSpace(line) == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "add":
			err = a.Add(ctx)
		case "l", "list":
			err = a.List(ctx)
		case "enable":
			err = a.Enable(ctx, args)
		case "disable":
			err = a.Disable(ctx, args)
		case "delete":
			err = a.Delete(ctx, args)
		case "take":
			err = a.Take(ctx, args)
		case "skip":
			err = a.Skip(ctx, args)
		case "snooze":
			err = a.Snooze(ctx, args)
		case "history":
			err = a.History(ctx, args)
		case "stats":
			err = a.Stats(ctx, args)
		case "settings":
			err = a.Settings(ctx)
		case "export":
			err = a.Export(ctx, args)
		case "import":
			err = a.Import(ctx, args)
		case "backup":
			err = a.Backup(ctx)
		case "backups":
			err = a.Backups(ctx)
		case "restore":
			err = a.Restore(ctx, args)
		case "cleanup":
			err = a.Cleanup(ctx)
		case "check":
			err = a.Check(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
		if err != nil {
			printlnFn(errorStyle.Render(err.Error()))
		}
		if readErr != nil {
			// EOF after a final line without a trailing newline
			return
		}
	}
}

// Root prints the welcome banner and runs the REPL over the app's reader.
func (a *App) Root(ctx context.Context) {
	fmt.Println(titleStyle.Render("medminder") + " — type 'help' for commands")
	runREPL(ctx, a, a.reader)
}
