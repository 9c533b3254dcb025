package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Interpreter runs a line the shell has no other use for, using its own
// grammar.
type Interpreter interface {
	Run(ctx context.Context, line, dir string, streams Streams) (exitCode int, err error)
}

// SystemInterpreter hands the line to an external shell as "shell -c line".
type SystemInterpreter struct {
	Launcher Launcher
	// Shell is the interpreter binary. When empty $SHELL is used, and
	// /bin/sh when that is unset too.
	Shell string
}

func (s SystemInterpreter) Run(ctx context.Context, line, dir string, streams Streams) (int, error) {
	launcher := s.Launcher
	if launcher == nil {
		launcher = ExecLauncher{}
	}
	proc, err := launcher.Start(ctx, ProcessSpec{
		Path:    s.shell(),
		Args:    []string{"-c", line},
		Dir:     dir,
		Streams: streams,
	})
	if err != nil {
		return -1, err
	}
	return proc.Wait()
}

func (s SystemInterpreter) shell() string {
	if s.Shell != "" {
		return s.Shell
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// EmbeddedInterpreter runs the line with a POSIX shell interpreter inside
// this process.
type EmbeddedInterpreter struct {
	// Env is the environment the line sees, nil for the process one.
	Env []string
}

func (e EmbeddedInterpreter) Run(ctx context.Context, line, dir string, streams Streams) (int, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return -1, fmt.Errorf("parsing %q: %w", line, err)
	}

	env := e.Env
	if env == nil {
		env = os.Environ()
	}
	stdout, stderr, flush := streams.writers()
	defer flush()
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	runner, err := interp.New(
		interp.StdIO(streams.Stdin, stdout, stderr),
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(env...)),
	)
	if err != nil {
		return -1, err
	}

	if err := runner.Run(ctx, file); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return int(status), nil
		}
		return -1, err
	}
	return 0, nil
}
