package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Shell is an interactive session: it reads keys, edits the line, and runs
// what is submitted.
type Shell struct {
	cfg Config

	term  Terminal
	input Input

	fs          FileSystem
	settings    Settings
	launcher    Launcher
	resolver    PathResolver
	interpreter Interpreter
	keymap      *Keymap
	log         *zap.Logger

	line      *CommandLine
	history   *History
	completer *Completer
	view      lineView

	manPages map[string][]string
}

// New creates a session drawing on term and reading from input. Zero
// fields of cfg get their defaults; start from DefaultConfig to keep the
// boolean defaults as well.
func New(term Terminal, input Input, cfg Config) (*Shell, error) {
	if term == nil || input == nil {
		return nil, errors.New("shell: terminal and input are required")
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	s := &Shell{
		cfg:         cfg,
		term:        term,
		input:       input,
		fs:          cfg.FileSystem,
		settings:    cfg.Settings,
		launcher:    cfg.Launcher,
		resolver:    cfg.Resolver,
		interpreter: cfg.Interpreter,
		keymap:      cfg.Keymap,
		log:         cfg.Logger,
		line:        NewCommandLine(""),
		history:     NewHistory(),
		manPages:    builtinManPages(),
	}
	s.completer = NewCompleter(cfg.FileSystem, s.ManPageNames()...)
	s.completer.PeekMax = cfg.PeekMax
	return s, nil
}

func (s *Shell) History() *History {
	return s.history
}

func (s *Shell) Line() *CommandLine {
	return s.line
}

func (s *Shell) Bind(k Key, action Action) {
	s.keymap.Bind(k, action)
}

// Run loads the history and serves lines until the session is exited or
// the input ends. Only a failing input or terminal makes it return an
// error.
func (s *Shell) Run(ctx context.Context) error {
	s.restoreHistory()
	s.log.Info("session started", zap.String("dir", s.fs.Getwd()), zap.Int("history", s.history.Len()))
	defer s.log.Info("session ended")

	if s.cfg.Header != "" {
		s.writeLine(styleHeader, s.cfg.Header)
	}

	for {
		if err := s.prompt(); err != nil {
			return err
		}
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			k, err := s.input.ReadEvent()
			if errors.Is(err, io.EOF) {
				s.writeRaw("\r\n")
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			next, exit, err := s.handleKey(ctx, k)
			if err != nil {
				return err
			}
			if exit {
				return nil
			}
			if next {
				break
			}
		}
	}
}

// handleKey processes one event. next asks for a fresh prompt, exit ends
// the session.
func (s *Shell) handleKey(ctx context.Context, k Key) (next, exit bool, err error) {
	action := s.keymap.Lookup(k)

	if s.history.Browsing() && action != ActionHistoryPrev && action != ActionHistoryNext {
		s.history.Reset()
	}
	if s.completer.Active() && action != ActionComplete && action != ActionCompleteBack {
		if err := s.completer.Reset(s.term); err != nil {
			s.log.Warn("clearing completion preview", zap.Error(err))
		}
	}

	switch action {
	case ActionClear:
		if err := s.term.Clear(); err != nil {
			return false, false, err
		}
		return false, false, s.prompt()
	case ActionComplete, ActionCompleteBack:
		return false, false, s.complete(action == ActionCompleteBack)
	case ActionHistoryPrev, ActionHistoryNext:
		return false, false, s.browseHistory(action == ActionHistoryPrev)
	case ActionSubmit:
		exit, err := s.submit(ctx)
		return true, exit, err
	case ActionExit:
		s.writeRaw("\r\n")
		return false, true, nil
	case ActionInterrupt:
		if err := s.view.end(s.term, s.line); err != nil {
			return false, false, err
		}
		s.writeRaw("^C\r\n")
		s.line.Clear()
		return true, false, nil
	}

	if s.edit(k) {
		return false, false, s.view.render(s.term, s.line)
	}
	return false, false, nil
}

func (s *Shell) prompt() error {
	s.writeRaw(stylePrompt.Render(formatPrompt(s.cfg.PromptFormat, s.fs.Getwd())))
	row, col, err := s.term.Cursor()
	if err != nil {
		return fmt.Errorf("querying cursor: %w", err)
	}
	s.view.reset(row, col)
	if s.line.Len() == 0 {
		return nil
	}
	return s.view.render(s.term, s.line)
}

func (s *Shell) complete(backwards bool) error {
	// The new candidate may wrap into rows the old preview covers.
	if err := s.completer.ClearPreview(s.term); err != nil {
		return err
	}
	if !s.completer.Active() {
		token, _ := s.line.CurrentToken()
		index := s.line.CurrentTokenIndex()
		first := index == 0 || (index == noToken && len(s.line.Tokens()) == 0)
		includeCommands := first || strings.EqualFold(s.line.Command(), "man")
		offset := s.completer.Match(token, includeCommands)
		s.log.Debug("completion",
			zap.String("token", token),
			zap.Bool("commands", includeCommands),
			zap.Int("offset", offset),
			zap.Int("candidates", s.completer.Count()))
	}

	var replacement string
	var ok bool
	if backwards {
		replacement, ok = s.completer.Previous()
	} else {
		replacement, ok = s.completer.Next()
	}
	if ok {
		s.line.SetCurrentToken(replacement)
		if err := s.view.render(s.term, s.line); err != nil {
			return err
		}
	}

	if s.completer.Count() > 1 {
		scrolled, err := s.completer.Peek(s.term, s.view.rowsBelowCursor(s.term, s.line))
		s.view.shift(scrolled)
		return err
	}
	return nil
}

func (s *Shell) browseHistory(backwards bool) error {
	var text string
	var ok bool
	if backwards {
		text, ok = s.history.Prev(s.line.Text())
	} else {
		text, ok = s.history.Next()
	}
	if !ok {
		return nil
	}
	s.line.SetText(text)
	s.line.End()
	return s.view.render(s.term, s.line)
}

func (s *Shell) submit(ctx context.Context) (bool, error) {
	text := s.line.Text()
	s.history.Add(text)
	s.persistHistory()

	if err := s.view.end(s.term, s.line); err != nil {
		return false, err
	}
	s.writeRaw("\r\n")
	cmd := NewCommandLine(text)
	s.line.Clear()

	if strings.TrimSpace(text) == "" {
		return false, nil
	}
	result := s.dispatch(ctx, cmd)
	return result.ShouldExit, nil
}

// edit applies a key that is not bound to an action to the line. It reports
// whether the line needs to be drawn again.
func (s *Shell) edit(k Key) bool {
	l := s.line
	ctrl := k.Modifiers&ModifierCtrl != 0
	alt := k.Modifiers&ModifierAlt != 0

	switch k.Code {
	case KeyBackspace:
		if alt {
			l.EraseWordBackward()
			return true
		}
		return l.Backspace()
	case KeyDelete:
		return l.Delete()
	case KeyHome:
		l.Home()
	case KeyEnd:
		l.End()
	case KeyLeft:
		if ctrl || alt {
			l.PrevToken()
		} else {
			l.Left()
		}
	case KeyRight:
		if ctrl || alt {
			l.NextToken()
		} else {
			l.Right()
		}
	case KeyInsert:
		l.ToggleOvertype()
		return false
	case KeyRune:
		if ctrl {
			switch k.Rune {
			case 'a':
				l.Home()
			case 'e':
				l.End()
			case 'b':
				l.Left()
			case 'f':
				l.Right()
			case 'k':
				l.EraseToEnd()
			case 'u':
				l.KillToStart()
			case 'w':
				l.EraseWordBackward()
			default:
				return false
			}
			return true
		}
		if alt {
			switch k.Rune {
			case 'b':
				l.PrevToken()
			case 'f':
				l.NextToken()
			default:
				return false
			}
			return true
		}
		if k.Rune < ' ' {
			return false
		}
		l.InsertRune(k.Rune)
	default:
		return false
	}
	return true
}

func (s *Shell) restoreHistory() {
	if s.settings == nil {
		return
	}
	value, ok := s.settings.Get(SettingHistory)
	if !ok {
		return
	}
	h, err := DecodeHistory(value)
	if err != nil {
		s.log.Warn("discarding unreadable history", zap.Error(err))
	}
	s.history = h
}

func (s *Shell) persistHistory() {
	if s.settings == nil {
		return
	}
	if s.history.Len() == 0 {
		if err := s.settings.Delete(SettingHistory); err != nil {
			s.log.Warn("clearing stored history", zap.Error(err))
		}
		return
	}
	value, err := EncodeHistory(s.history)
	if err != nil {
		s.log.Warn("encoding history", zap.Error(err))
		return
	}
	if err := s.settings.Set(SettingHistory, value); err != nil {
		s.log.Warn("storing history", zap.Error(err))
	}
}

// Message shows text in the color of kind, one screen line per text line.
func (s *Shell) Message(kind MessageKind, text string) {
	style := messageStyle(kind)
	for _, line := range strings.Split(strings.TrimRight(text, "\r\n"), "\n") {
		s.writeLine(style, strings.TrimSuffix(line, "\r"))
	}
}

func (s *Shell) writeLine(style Style, text string) {
	s.writeRaw(style.Render(text) + "\r\n")
}

func (s *Shell) writeRaw(text string) {
	if _, err := io.WriteString(s.term, text); err != nil {
		s.log.Warn("writing to terminal", zap.Error(err))
	}
}
