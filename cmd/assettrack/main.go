// Command assettrack serves the asset inventory API and runs local
// inventory tasks from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/erazemk/assettrack/internal/config"
)

const usage = `Usage: assettrack [command] [flags]

Commands:
  serve    run the HTTP API (default)
  setup    create the user and department
  count    run an inventory session from a keyboard-wedge scanner on stdin
  export   write the asset catalog as CSV

Run 'assettrack <command> -h' for the flags of a command.
`

// command is one subcommand. register adds its own flags; run executes it
// after the shared configuration has been validated.
type command struct {
	name     string
	help     string
	quiet    bool
	register func(fs *flag.FlagSet)
	run      func(ctx context.Context, cfg *config.Config) error
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Getenv, os.Stdin, os.Stdout))
}

func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stdout io.Writer) int {
	name := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}
	if name == "help" {
		fmt.Fprint(stdout, usage)
		return 0
	}

	cmd, ok := commands(stdin, stdout)[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", name, usage)
		return 1
	}

	cfg := config.Load(getenv)
	fs := flag.NewFlagSet("assettrack "+name, flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if cmd.register != nil {
		cmd.register(fs)
	}
	fs.Usage = func() {
		fmt.Fprintf(stdout, "Usage: assettrack %s [flags]\n\nFlags:\n%s%s  -h, -help               show this help and exit\n",
			name, config.FlagUsage, cmd.help)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	closeLog, err := setupLogger(cfg.LogPath, cmd.quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	if err := cmd.run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func commands(stdin io.Reader, stdout io.Writer) map[string]command {
	var (
		username   string
		password   string
		department string
		session    string
		resume     int64
		output     string
	)
	userFlag := func(fs *flag.FlagSet, def string) {
		fs.StringVar(&username, "user", def, "")
		fs.StringVar(&username, "u", def, "")
	}

	return map[string]command{
		"serve": {
			name: "serve",
			help: "  -u, -user <name>        username created on first run (default: admin)\n" +
				"  -department <name>      department created on first run (default: Department)\n",
			register: func(fs *flag.FlagSet) {
				userFlag(fs, "admin")
				fs.StringVar(&department, "department", "Department", "")
			},
			run: func(ctx context.Context, cfg *config.Config) error {
				return serve(ctx, cfg, username, department, stdout)
			},
		},
		"setup": {
			name: "setup",
			help: "  -u, -user <name>        username (default: admin)\n" +
				"  -password <password>    password (default: generated and printed)\n" +
				"  -department <name>      department name (default: Department)\n",
			register: func(fs *flag.FlagSet) {
				userFlag(fs, "admin")
				fs.StringVar(&password, "password", "", "")
				fs.StringVar(&department, "department", "Department", "")
			},
			run: func(ctx context.Context, cfg *config.Config) error {
				return withApp(ctx, cfg, func(a *app) error {
					return setup(ctx, a, cfg, username, password, department, stdout)
				})
			},
		},
		"count": {
			name:  "count",
			quiet: true,
			help: "  -n, -name <name>        name of the new session\n" +
				"  -resume <id>            continue an existing session instead\n" +
				"  -u, -user <name>        user whose department is counted (default: admin)\n",
			register: func(fs *flag.FlagSet) {
				userFlag(fs, "admin")
				fs.StringVar(&session, "name", "", "")
				fs.StringVar(&session, "n", "", "")
				fs.Int64Var(&resume, "resume", 0, "")
			},
			run: func(ctx context.Context, cfg *config.Config) error {
				return withApp(ctx, cfg, func(a *app) error {
					return count(ctx, a, countOptions{username: username, name: session, resume: resume}, stdin, stdout)
				})
			},
		},
		"export": {
			name:  "export",
			quiet: true,
			help: "  -o <path>               output file (default: stdout)\n" +
				"  -u, -user <name>        user whose department is exported (default: admin)\n",
			register: func(fs *flag.FlagSet) {
				userFlag(fs, "admin")
				fs.StringVar(&output, "o", "", "")
			},
			run: func(ctx context.Context, cfg *config.Config) error {
				return withApp(ctx, cfg, func(a *app) error {
					return export(ctx, a, username, output, stdout)
				})
			},
		},
	}
}

// withApp opens the configured store, builds the app and closes the store
// when fn returns.
func withApp(ctx context.Context, cfg *config.Config, fn func(*app) error) error {
	s, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	a, err := newApp(ctx, s)
	if err != nil {
		return err
	}
	return fn(a)
}
