package shell

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"
)

// Result tells the loop what became of a submitted line.
type Result struct {
	Handled    bool
	ShouldExit bool
}

// CommandHandler gets every submitted line before the shell looks at it.
// Returning an unhandled result lets the shell carry on.
type CommandHandler func(ctx context.Context, cmd *CommandLine) Result

// dispatch runs a submitted line: the handler first, then a program found on
// the path, a help request for a built-in, the built-in itself, and finally
// the interpreter. With BuiltinsFirst the path comes after the built-ins.
func (s *Shell) dispatch(ctx context.Context, cmd *CommandLine) Result {
	name := cmd.Command()
	log := s.log.With(zap.String("command", name))

	if s.cfg.Handler != nil {
		if r := s.cfg.Handler(ctx, cmd); r.Handled || r.ShouldExit {
			log.Debug("dispatched", zap.String("route", "handler"), zap.Bool("exit", r.ShouldExit))
			return r
		}
	}

	if !s.cfg.BuiltinsFirst {
		if r, ok := s.runExternal(ctx, cmd); ok {
			return r
		}
	}

	if cmd.Arguments().HasSwitch("?|help") {
		if _, ok := s.manPages[name]; ok {
			log.Debug("dispatched", zap.String("route", "help"))
			s.man(name)
			return Result{Handled: true}
		}
	}

	if builtin, ok := s.builtins()[name]; ok {
		log.Debug("dispatched", zap.String("route", "builtin"))
		return builtin(ctx, cmd.Arguments())
	}

	if s.cfg.BuiltinsFirst {
		if r, ok := s.runExternal(ctx, cmd); ok {
			return r
		}
	}

	line := strings.TrimSpace(cmd.Text())
	log.Debug("dispatched", zap.String("route", "interpreter"))
	s.withChild(func() {
		code, err := s.interpreter.Run(ctx, line, s.fs.Getwd(), s.streams())
		if err != nil {
			log.Warn("interpreter failed", zap.Error(err))
			s.Message(MessageError, "EXTERNAL COMMAND CAUSED EXCEPTION: "+err.Error())
			return
		}
		log.Debug("interpreter exited", zap.Int("code", code))
	})
	return Result{Handled: true}
}

func (s *Shell) runExternal(ctx context.Context, cmd *CommandLine) (Result, bool) {
	path, err := s.resolver.LookPath(cmd.Command(), s.fs.Getwd())
	if err != nil {
		return Result{}, false
	}
	s.log.Debug("dispatched", zap.String("command", cmd.Command()), zap.String("route", "path"), zap.String("path", path))
	s.Execute(ctx, path, cmd.Arguments().Raw()...)
	return Result{Handled: true}, true
}

// Execute runs the program at path in the working directory and waits for
// it. Failures are reported on screen.
func (s *Shell) Execute(ctx context.Context, path string, args ...string) {
	log := s.log.With(zap.String("path", path), zap.Strings("args", args))
	s.withChild(func() {
		proc, err := s.launcher.Start(ctx, ProcessSpec{
			Path:    path,
			Args:    args,
			Dir:     s.fs.Getwd(),
			Streams: s.streams(),
		})
		if err != nil {
			log.Warn("starting process", zap.Error(err))
			s.Message(MessageError, "EXTERNAL COMMAND CAUSED EXCEPTION: "+err.Error())
			return
		}
		code, err := proc.Wait()
		if err != nil {
			log.Warn("waiting for process", zap.Error(err))
			s.Message(MessageError, "EXTERNAL COMMAND CAUSED EXCEPTION: "+err.Error())
			return
		}
		log.Debug("process exited", zap.Int("code", code))
	})
}

func (s *Shell) streams() Streams {
	streams := Streams{Stdin: s.cfg.Stdin}
	if s.cfg.RedirectOutput {
		streams.OnStdout = func(line string) { s.writeLine(styleContent, line) }
		streams.OnStderr = func(line string) { s.writeLine(styleError, line) }
		return streams
	}
	streams.Stdout = s.cfg.Stdout
	streams.Stderr = s.cfg.Stderr
	return streams
}

// withChild runs fn with the terminal out of raw mode and SIGINT kept away
// from the shell, so it only reaches the child.
func (s *Shell) withChild(fn func()) {
	if suspender, ok := s.term.(Suspender); ok {
		if err := suspender.Suspend(); err != nil {
			s.log.Warn("leaving raw mode", zap.Error(err))
		}
		defer func() {
			if err := suspender.Resume(); err != nil {
				s.log.Warn("entering raw mode", zap.Error(err))
			}
		}()
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	fn()
}
