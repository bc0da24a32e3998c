package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/interp"

	"github.com/bamsammich/burrow/internal/builtin"
	"github.com/bamsammich/burrow/internal/config"
	"github.com/bamsammich/burrow/internal/engine"
	"github.com/bamsammich/burrow/internal/shell"
	"github.com/bamsammich/burrow/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// globalFlags are the root command's flags.
type globalFlags struct {
	command     string
	configPath  string
	logFile     string
	verbose     bool
	debug       bool
	showVersion bool
}

// environment is the process-wide state every mode starts from.
type environment struct {
	session *builtin.Session
	closers []io.Closer
}

func (e *environment) Close() {
	for _, c := range e.closers {
		_ = c.Close()
	}
}

func run() int {
	var flags globalFlags
	rootCmd := newRootCmd(&flags)
	rootCmd.AddCommand(docsCmd)

	err := rootCmd.Execute()
	engine.CleanupTmpFiles()
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var status interp.ExitStatus
	if errors.As(err, &status) {
		return int(status)
	}
	fmt.Fprintf(os.Stderr, "burrow: %v\n", err)
	return 2
}

// newRootCmd builds the root command and the builtin subcommands.
func newRootCmd(flags *globalFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "burrow [flags] [script [args...]]",
		Short: "A command shell with a link-aware recursive copy builtin",
		Long: `burrow is an interactive command shell. With no arguments it reads
commands from the terminal; with -c it runs the given command string; with
a script argument it runs the script with the remaining arguments as $1, $2...

The cp and realpath builtins are also available as subcommands.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			if flags.showVersion {
				fmt.Fprintf(os.Stdout, "burrow %s\n", version)
				return nil
			}
			env, err := setup(flags)
			if err != nil {
				return err
			}
			defer env.Close()
			return runShell(env, flags, args)
		},
	}
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.Flags().StringVarP(&flags.command, "command", "c", "", "run COMMAND and exit")
	rootCmd.Flags().StringVar(&flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/burrow/config.toml)")
	rootCmd.Flags().StringVar(&flags.logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log informational messages")
	rootCmd.Flags().BoolVar(&flags.debug, "debug", false, "log debug messages")
	rootCmd.Flags().BoolVar(&flags.showVersion, "version", false, "print version and exit")

	for _, name := range builtin.Defaults(nil).Names() {
		rootCmd.AddCommand(newBuiltinCmd(name))
	}
	return rootCmd
}

// setup loads the config, configures terminal styling and logging, and
// returns a fresh session.
func setup(flags *globalFlags) (*environment, error) {
	logLevel := slog.LevelWarn
	if flags.debug {
		logLevel = slog.LevelDebug
	} else if flags.verbose {
		logLevel = slog.LevelInfo
	}
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})

	env := &environment{}
	var logHandler slog.Handler = textHandler
	var jsonHandler slog.Handler
	if flags.logFile != "" {
		lf, err := os.Create(flags.logFile)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		env.closers = append(env.closers, lf)
		jsonHandler = slog.NewJSONHandler(lf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	slog.SetDefault(slog.New(logHandler))

	var (
		cfg config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Warn("failed to load config", "error", err)
	}

	ui.SetColor(ui.WantColor(os.Stdout))
	ui.ApplyTheme(cfg.Theme)

	env.session = builtin.NewSession(cfg)
	env.session.LogHandler = jsonHandler
	slog.Debug("session ready", "config", config.Path(), "version", version)
	return env, nil
}

// runShell runs the interactive loop, a -c command string or a script.
func runShell(env *environment, flags *globalFlags, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	opts := shell.Options{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Session: env.session,
	}
	interactive := flags.command == "" && len(args) == 0 && ui.IsTTY(os.Stdin.Fd())
	switch {
	case flags.command != "":
		opts.Params = args
	case len(args) > 0:
		opts.Params = args[1:]
	}

	sh, err := shell.New(opts)
	if err != nil {
		return err
	}

	if interactive {
		// SIGINT cancels the running command, not the shell.
		stopInt := env.session.Interrupt.Notify(ctx, os.Interrupt)
		defer stopInt()
		return sh.Interactive(ctx, os.Stdin)
	}

	ctx, stopInt := signal.NotifyContext(ctx, os.Interrupt)
	defer stopInt()
	switch {
	case flags.command != "":
		return sh.RunString(ctx, flags.command)
	case len(args) > 0:
		return sh.RunFile(ctx, args[0])
	default:
		return sh.Run(ctx, os.Stdin, "")
	}
}

// newBuiltinCmd exposes a builtin as a subcommand. Arguments are passed to
// the builtin unparsed, so it accepts exactly what it accepts in the shell.
func newBuiltinCmd(name string) *cobra.Command {
	info, _ := builtin.Defaults(nil).Lookup(name)
	return &cobra.Command{
		Use:                info.Usage(),
		Short:              info.Description(),
		DisableFlagParsing: true,
		RunE: func(_ *cobra.Command, args []string) error {
			env, err := setup(&globalFlags{})
			if err != nil {
				return err
			}
			defer env.Close()

			cmd, _ := builtin.Defaults(env.session).Lookup(name)
			hc, err := builtin.ProcessHandlerContext()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			argv := append([]string{name}, args...)
			if err := cmd.Run(builtin.WithHandlerContext(ctx, hc), argv); err != nil {
				builtin.Report(os.Stderr, argv, err)
				return &exitError{code: 1}
			}
			return nil
		},
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
