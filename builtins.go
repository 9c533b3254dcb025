package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
)

const lsTimeFormat = "2006-01-02 15:04:05"

var catBanner = []string{
	`      |\__/,|   (` + "`" + `\  `,
	`    _.|o o  |_   ) ) `,
	`---(((---(((---------`,
}

type builtinFunc func(ctx context.Context, args *Arguments) Result

func builtinManPages() map[string][]string {
	return map[string][]string{
		"cat": {
			"Usage: cat [FILE]",
			"Concatenates a file to this shell output.",
		},
		"cd": {
			"Usage: cd [[DIRECTORY]]",
			"Changes current directory or shows current directory when used without a parameter.",
		},
		"cls": {
			"Usage: cls",
			"Clears the console window. Press Ctrl+L instead.",
		},
		"exit": {
			"Usage: exit",
			"Exits this shell session. Press Ctrl+D instead.",
		},
		"history": {
			"Usage: history [[-c]|[-clear]]",
			"Shows current command history or clear it if '-clear' switch is used.",
		},
		"ls": {
			"Usage: ls [[DIRECTORY]]",
			"Lists the detailed content of the current or specified directory.",
		},
		"man": {
			"Usage: man [[PAGE]]",
			"Shows a micro-manual for the specified command of this shell.",
			"Shows list of available internal commands when used without [PAGE] parameter.",
		},
		"pwd": {
			"Usage: pwd",
			"Shows the path to the current working directory.",
		},
		"touch": {
			"Usage: touch [FILE]",
			"Creates a new empty file, or sets the last write time of the existing one to current.",
		},
	}
}

// AddManPage registers a manual page and offers its name for completion.
// Existing pages are kept; it reports whether the page was added.
func (s *Shell) AddManPage(name string, lines ...string) bool {
	if _, ok := s.manPages[name]; ok || name == "" {
		return false
	}
	s.manPages[name] = append([]string(nil), lines...)
	s.completer.AddCommands(name)
	return true
}

func (s *Shell) ManPageNames() []string {
	names := make([]string, 0, len(s.manPages))
	for name := range s.manPages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Shell) builtins() map[string]builtinFunc {
	return map[string]builtinFunc{
		"cat":     s.cat,
		"cd":      s.cd,
		"cls":     s.cls,
		"exit":    s.exit,
		"history": s.showHistory,
		"ls":      s.ls,
		"man":     s.manCommand,
		"pwd":     s.pwd,
		"touch":   s.touch,
	}
}

func (s *Shell) cat(_ context.Context, args *Arguments) Result {
	name, ok := args.Positional(0)
	if !ok {
		s.Message(MessageSpecial, strings.Join(catBanner, "\n"))
		return Result{Handled: true}
	}
	if info, err := s.fs.Stat(name); err != nil || info.IsDir() {
		s.Message(MessageWarning, "No such file.")
		return Result{Handled: true}
	}
	data, err := s.fs.ReadFile(name)
	if err != nil {
		s.Message(MessageError, "Could not read: "+err.Error())
		return Result{Handled: true}
	}
	s.Message(MessageContent, string(data))
	return Result{Handled: true}
}

func (s *Shell) cd(_ context.Context, args *Arguments) Result {
	dir, ok := args.Positional(0)
	if !ok {
		s.Message(MessageContent, s.fs.Getwd())
		return Result{Handled: true}
	}
	if err := s.fs.Chdir(dir); err != nil {
		s.log.Debug("cd", zap.String("dir", dir), zap.Error(err))
		s.Message(MessageWarning, fmt.Sprintf("No such directory: %s.", dir))
	}
	return Result{Handled: true}
}

func (s *Shell) cls(context.Context, *Arguments) Result {
	if err := s.term.Clear(); err != nil {
		s.log.Warn("clearing screen", zap.Error(err))
	}
	return Result{Handled: true}
}

func (s *Shell) exit(context.Context, *Arguments) Result {
	return Result{Handled: true, ShouldExit: true}
}

func (s *Shell) showHistory(_ context.Context, args *Arguments) Result {
	if args.HasSwitch("c|clear") {
		s.history.Clear()
		if s.settings != nil {
			if err := s.settings.Delete(SettingHistory); err != nil {
				s.log.Warn("clearing stored history", zap.Error(err))
			}
		}
		return Result{Handled: true}
	}

	// The newest entry is the history command itself.
	listing := s.history.String(true)
	if listing == "" {
		s.Message(MessageContent, "The list is empty.")
	} else {
		s.Message(MessageContent, listing)
	}
	return Result{Handled: true}
}

func (s *Shell) ls(_ context.Context, args *Arguments) Result {
	dir, ok := args.Positional(0)
	if !ok {
		dir = "."
	}
	listing, err := s.listDirectory(dir)
	if err != nil {
		s.log.Debug("ls", zap.String("dir", dir), zap.Error(err))
		s.Message(MessageWarning, fmt.Sprintf("No such directory: %s.", dir))
		return Result{Handled: true}
	}
	if listing != "" {
		s.Message(MessageContent, listing)
	}
	return Result{Handled: true}
}

func (s *Shell) listDirectory(dir string) (string, error) {
	info, err := s.fs.Stat(dir)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNoSuchDirectory, dir)
	}
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var dirs, files []fs.FileInfo
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.IsDir() {
			dirs = append(dirs, info)
		} else {
			files = append(files, info)
		}
	}
	byName := func(list []fs.FileInfo) {
		sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	}
	byName(dirs)
	byName(files)

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, d := range dirs {
		fmt.Fprintf(w, "%s\t<DIR>\t%s\n", d.ModTime().Format(lsTimeFormat), d.Name())
	}
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%d\t%s\n", f.ModTime().Format(lsTimeFormat), f.Size(), f.Name())
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Shell) manCommand(_ context.Context, args *Arguments) Result {
	page, _ := args.Positional(0)
	s.man(page)
	return Result{Handled: true}
}

func (s *Shell) man(page string) {
	if page == "" {
		s.Message(MessageContent, "Please specify micro-manual page from the following:\n"+
			"[ "+strings.Join(s.ManPageNames(), ", ")+" ]")
		return
	}
	lines, ok := s.manPages[page]
	if !ok {
		s.Message(MessageWarning, fmt.Sprintf("There's no manual page on %q.", page))
		return
	}
	s.Message(MessageContent, strings.Join(lines, "\n"))
}

func (s *Shell) pwd(context.Context, *Arguments) Result {
	s.Message(MessageContent, s.fs.Getwd())
	return Result{Handled: true}
}

func (s *Shell) touch(_ context.Context, args *Arguments) Result {
	name, ok := args.Positional(0)
	if !ok {
		s.Message(MessageWarning, s.manPages["touch"][0])
		return Result{Handled: true}
	}

	var err error
	if _, statErr := s.fs.Stat(name); statErr == nil {
		err = s.fs.Touch(name, time.Now())
	} else if errors.Is(statErr, fs.ErrNotExist) {
		err = s.fs.Create(name)
	} else {
		err = statErr
	}
	if err != nil {
		s.log.Debug("touch", zap.String("file", name), zap.Error(err))
		s.Message(MessageError, "Can't touch this.")
	}
	return Result{Handled: true}
}
