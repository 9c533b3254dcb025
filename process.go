package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"sync"
)

// Streams wires the standard streams of a spawned program. When a line
// callback is set the stream is redirected to it and the matching writer is
// ignored.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	OnStdout func(line string)
	OnStderr func(line string)
}

func (s Streams) Redirected() bool {
	return s.OnStdout != nil || s.OnStderr != nil
}

// writers returns the writers to hand to a program, and a function that
// delivers any unterminated last line once it is done.
func (s Streams) writers() (stdout, stderr io.Writer, flush func()) {
	stdout, stderr = s.Stdout, s.Stderr
	var lineWriters []*lineWriter
	if s.OnStdout != nil {
		w := &lineWriter{fn: s.OnStdout}
		lineWriters = append(lineWriters, w)
		stdout = w
	}
	if s.OnStderr != nil {
		w := &lineWriter{fn: s.OnStderr}
		lineWriters = append(lineWriters, w)
		stderr = w
	}
	return stdout, stderr, func() {
		for _, w := range lineWriters {
			w.Flush()
		}
	}
}

type ProcessSpec struct {
	Path string
	Args []string
	Dir  string
	// Env is the environment of the program, nil for the shell's own.
	Env []string
	Streams
}

type Process interface {
	// Wait blocks until the program exits. A non-zero exit is reported
	// through the code, not the error.
	Wait() (exitCode int, err error)
}

type Launcher interface {
	Start(ctx context.Context, spec ProcessSpec) (Process, error)
}

type ExecLauncher struct{}

func (ExecLauncher) Start(ctx context.Context, spec ProcessSpec) (Process, error) {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	cmd.Stdin = spec.Stdin
	var flush func()
	cmd.Stdout, cmd.Stderr, flush = spec.writers()
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd, flush: flush}, nil
}

type execProcess struct {
	cmd   *exec.Cmd
	flush func()
}

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	p.flush()
	return exitCode(err)
}

func exitCode(err error) (int, error) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// lineWriter calls fn once per complete line written to it, without the
// line terminator.
type lineWriter struct {
	mu  sync.Mutex
	fn  func(string)
	buf []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimSuffix(w.buf[:i], []byte{'\r'})
		w.fn(string(line))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.fn(string(w.buf))
		w.buf = nil
	}
}
