package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alimpfard/shell"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	settings      string
	section       string
	prompt        string
	header        string
	peekMax       int
	logFile       string
	embedded      bool
	noRedirect    bool
	builtinsFirst bool
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "shell",
		Short:         "Interactive command shell with history and completion",
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.settings, "settings", defaultSettingsPath(), "YAML settings file")
	flags.StringVar(&opts.section, "section", shell.DefaultSettingsSection, "settings section to use")
	flags.StringVar(&opts.prompt, "prompt", "", "prompt format, {dir} is the working directory")
	flags.StringVar(&opts.header, "header", "", "line printed when the session starts")
	flags.IntVar(&opts.peekMax, "peek-max", 0, "longest completion list shown below the line")
	flags.StringVar(&opts.logFile, "log-file", "", "write JSON logs to this file")
	flags.BoolVar(&opts.embedded, "embedded-sh", false, "run unknown commands with the built-in POSIX interpreter")
	flags.BoolVar(&opts.noRedirect, "no-redirect", false, "let programs write to the terminal directly")
	flags.BoolVar(&opts.builtinsFirst, "builtins-first", true, "prefer built-in commands over programs on the path")
	return cmd
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "shell", "settings.yaml")
}

func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	return cfg.Build()
}

func run(cmd *cobra.Command, opts options) error {
	logger, err := newLogger(opts.logFile)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := shell.DefaultConfig()
	cfg.Logger = logger
	cfg.BuiltinsFirst = opts.builtinsFirst
	cfg.RedirectOutput = !opts.noRedirect

	if opts.settings != "" {
		settings, err := shell.OpenFileSettings(opts.settings, opts.section)
		if err != nil {
			return err
		}
		cfg.Settings = settings
		if err := shell.ApplySettings(&cfg, settings); err != nil {
			logger.Warn("ignoring settings", zap.String("path", opts.settings), zap.Error(err))
		}
	}

	flags := cmd.Flags()
	if flags.Changed("prompt") {
		cfg.PromptFormat = opts.prompt
	}
	if flags.Changed("header") {
		cfg.Header = opts.header
	}
	if flags.Changed("peek-max") {
		cfg.PeekMax = opts.peekMax
	}
	if opts.embedded {
		cfg.Interpreter = &shell.EmbeddedInterpreter{Env: os.Environ()}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if !shell.IsTerminal(os.Stdin) {
		logger.Info("stdin is not a terminal")
		s, err := shell.New(shell.NewStreamTerminal(os.Stdout), shell.NewDecoder(os.Stdin), cfg)
		if err != nil {
			return err
		}
		return s.Run(ctx)
	}

	term := shell.NewVTTerminal(os.Stdin, os.Stdout)
	if err := term.EnterRaw(); err != nil {
		return err
	}
	defer func() {
		if err := term.Restore(); err != nil {
			logger.Warn("restoring terminal", zap.Error(err))
		}
	}()

	s, err := shell.New(term, term, cfg)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}
