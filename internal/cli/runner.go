package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/task-tracker/internal/config"
	"github.com/Makepad-fr/task-tracker/internal/logging"
	"github.com/Makepad-fr/task-tracker/internal/model"
	"github.com/Makepad-fr/task-tracker/internal/store/jsonstore"
	"github.com/Makepad-fr/task-tracker/internal/tracker"
	"github.com/Makepad-fr/task-tracker/internal/tui"
	"github.com/Makepad-fr/task-tracker/internal/ui"
)

// Version is reported by the version command.
var Version = "v1.0.0"

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
)

// Options carry the resolved configuration and process streams.
type Options struct {
	Config *config.Config
	Logger *log.Logger

	Stdin          io.Reader
	Stdout, Stderr io.Writer

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// UsageError is a malformed invocation. It is reported together with the
// usage text.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func usagef(format string, a ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, a...)}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error).
func Run(args []string, opt Options) int {
	opt = withDefaults(opt)
	p := ui.NewPrinter(opt.Stdout, opt.Stderr, opt.Config.Theme)

	return report(dispatch(args, opt, p), opt, p)
}

// Report prints err the way Run does and returns the matching exit code.
func Report(err error, opt Options) int {
	opt = withDefaults(opt)
	return report(err, opt, ui.NewPrinter(opt.Stdout, opt.Stderr, opt.Config.Theme))
}

func report(err error, opt Options, p *ui.Printer) int {
	if err == nil {
		return ExitOK
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		p.Fail(usage.Msg)
		fmt.Fprintln(opt.Stderr)
		PrintHelp(opt.Stderr)
		return ExitError
	}
	opt.Logger.Debug("command failed", "err", err)
	p.Fail(err.Error())
	if errors.Is(err, jsonstore.ErrCorruptData) {
		p.Hint("Hint: fix or move " + opt.Config.File + " aside; it was left untouched")
	}
	return ExitError
}

func withDefaults(opt Options) Options {
	if opt.Config == nil {
		opt.Config = config.Default()
	}
	if opt.Logger == nil {
		opt.Logger = logging.Discard()
	}
	if opt.Stdin == nil {
		opt.Stdin = os.Stdin
	}
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Stderr == nil {
		opt.Stderr = os.Stderr
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return opt
}

func dispatch(args []string, opt Options, p *ui.Printer) error {
	if len(args) == 0 {
		return usagef("Missing command")
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return nil
	case "version", "--version":
		p.Println("task-tracker " + Version)
		return nil
	case "config":
		return opt.Config.Encode(opt.Stdout)
	}

	tr, err := newTracker(opt)
	if err != nil {
		return err
	}

	switch cmd {
	case "add":
		return doAdd(tr, a, p)
	case "update":
		return doUpdate(tr, a, p)
	case "delete":
		return doDelete(tr, a, p)
	case "mark-in-progress":
		return doStatus(tr, a, model.StatusInProgress, p)
	case "mark-done":
		return doStatus(tr, a, model.StatusDone, p)
	case "list":
		return doList(tr, a, p)
	case "show":
		return doShow(tr, a, p)
	case "browse":
		if len(a) != 0 {
			return usagef("browse takes no arguments")
		}
		return tui.Run(tr, tui.Options{
			Input:  opt.Stdin,
			Output: opt.Stdout,
			Theme:  opt.Config.Theme,
		})
	}
	return usagef("Unknown command '%s'", cmd)
}

func newTracker(opt Options) (*tracker.Tracker, error) {
	store := jsonstore.New(opt.Config.File, opt.Logger)
	return tracker.New(store,
		tracker.WithClock(opt.Now),
		tracker.WithLogger(opt.Logger),
	)
}

// PrintHelp writes the usage text to w.
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `task-tracker - track tasks in a local JSON file

Usage:
  task-tracker [flags] <command> [args]

Commands:
  add <title> [description...]                 Add a new task (extra words form the description)
  update <id> [--title <title>] [--desc <d>]   Update a task's title and/or description
                                               NOTE: omitting --desc clears the description
  delete <id>                                  Delete a task
  mark-in-progress <id>                        Mark a task as in progress
  mark-done <id>                               Mark a task as done
  list [done|todo|in-progress]                 List tasks, optionally filtered by status
  show <id>                                    Show every field of a task
  browse                                       Browse and edit tasks interactively
  config                                       Print the effective configuration
  version                                      Print the version
  help                                         Show this help

Flags:
  --file <path>        Task data file (default %q)
  --config <path>      TOML config file
  --theme <name>       Output theme: %s
  --log-level <lvl>    debug, info, warn or error
  --log-format <fmt>   text, json or logfmt

Examples:
  task-tracker add "Buy groceries"
  task-tracker add "Buy groceries" "Milk, eggs, and bread"
  task-tracker update 1 --title "Buy groceries and cook"
  task-tracker update 1 --title "New title" --desc "New description"
  task-tracker mark-in-progress 1
  task-tracker mark-done 1
  task-tracker list done
  task-tracker delete 1
`, jsonstore.DefaultFileName, strings.Join(ui.ThemeNames(), ", "))
}

// -------------- subcommand impls ----------------

func doAdd(tr *tracker.Tracker, a []string, p *ui.Printer) error {
	if len(a) == 0 {
		return usagef("Missing task title")
	}
	title := a[0]
	if strings.TrimSpace(title) == "" {
		return usagef("Task title must not be empty")
	}
	var desc *string
	if len(a) > 1 {
		d := strings.Join(a[1:], " ")
		desc = &d
	}

	task, err := tr.Add(title, desc)
	if err != nil {
		return err
	}
	p.OK(fmt.Sprintf("Task added successfully (ID: %d)", task.ID))
	return nil
}

func doUpdate(tr *tracker.Tracker, a []string, p *ui.Printer) error {
	if len(a) == 0 {
		return usagef("Missing task ID")
	}
	id, err := parseID(a[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	titleFlag := fs.String("title", "", "new title")
	descFlag := fs.String("desc", "", "new description")
	if err := fs.Parse(a[1:]); err != nil {
		return usagef("%v", err)
	}
	if fs.NArg() > 0 {
		return usagef("Unknown option '%s'", fs.Arg(0))
	}

	var title, desc *string
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			title = titleFlag
		case "desc":
			desc = descFlag
		}
	})
	if title == nil && desc == nil {
		return usagef("Must specify at least --title or --desc")
	}
	if title != nil && strings.TrimSpace(*title) == "" {
		return usagef("Task title must not be empty")
	}

	if _, err := tr.Update(id, title, desc); err != nil {
		return err
	}
	p.OK(fmt.Sprintf("Task %d updated successfully", id))
	return nil
}

func doDelete(tr *tracker.Tracker, a []string, p *ui.Printer) error {
	id, err := singleID(a)
	if err != nil {
		return err
	}
	res, err := tr.Delete(id)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Task %d deleted successfully", id)
	if res.CounterReset {
		msg += " (ID counter reset)"
	}
	p.OK(msg)
	return nil
}

func doStatus(tr *tracker.Tracker, a []string, status model.Status, p *ui.Printer) error {
	id, err := singleID(a)
	if err != nil {
		return err
	}
	if _, err := tr.SetStatus(id, status); err != nil {
		return err
	}
	p.OK(fmt.Sprintf("Task %d marked as %s", id, status))
	return nil
}

func doList(tr *tracker.Tracker, a []string, p *ui.Printer) error {
	var filter *model.Status
	switch len(a) {
	case 0:
	case 1:
		st, err := model.ParseFilter(a[0])
		if err != nil {
			return usagef("Invalid list filter '%s'. Use: done, todo, or in-progress", a[0])
		}
		filter = &st
	default:
		return usagef("list takes at most one filter")
	}

	tasks, err := tr.List(filter)
	if err != nil {
		return err
	}
	p.Tasks(ui.ListHeader(filter), tasks)
	return nil
}

func doShow(tr *tracker.Tracker, a []string, p *ui.Printer) error {
	id, err := singleID(a)
	if err != nil {
		return err
	}
	task, err := tr.Get(id)
	if err != nil {
		return err
	}
	p.Task(task)
	return nil
}

// -------------- argument helpers --------------

func singleID(a []string) (int, error) {
	switch len(a) {
	case 0:
		return 0, usagef("Missing task ID")
	case 1:
		return parseID(a[0])
	}
	return 0, usagef("Unexpected argument '%s'", a[1])
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, usagef("Invalid task ID '%s'", s)
	}
	return id, nil
}
