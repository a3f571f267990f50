package cli

import (
	"flag"
	"io"

	"github.com/Makepad-fr/task-tracker/internal/config"
)

// RootFlags are the flags accepted before the command name.
type RootFlags struct {
	Overrides config.Overrides
	Version   bool
	// Args is the command and its arguments.
	Args []string
}

// ParseRoot parses the root flags. It returns flag.ErrHelp for -h/--help and
// a *UsageError for anything else it cannot parse.
func ParseRoot(args []string) (RootFlags, error) {
	var rf RootFlags
	fs := flag.NewFlagSet("task-tracker", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&rf.Overrides.File, "file", "", "task data file")
	fs.StringVar(&rf.Overrides.ConfigPath, "config", "", "TOML config file")
	fs.StringVar(&rf.Overrides.Theme, "theme", "", "output theme")
	fs.StringVar(&rf.Overrides.LogLevel, "log-level", "", "log level")
	fs.StringVar(&rf.Overrides.LogFormat, "log-format", "", "log format")
	fs.BoolVar(&rf.Version, "version", false, "print the version")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return RootFlags{}, err
		}
		return RootFlags{}, usagef("%v", err)
	}
	rf.Args = fs.Args()
	if rf.Version {
		rf.Args = []string{"version"}
	}
	return rf, nil
}
