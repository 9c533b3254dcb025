package shell

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultHeader       = "Commands Hell v0.666"
	DefaultPromptFormat = "CS {dir}> "
)

// Settings keys read by ApplySettings, next to the history key.
const (
	SettingHistory = "history"
	SettingPrompt  = "prompt"
	SettingHeader  = "header"
	SettingPeekMax = "peek_max"
)

type Config struct {
	Header string
	// PromptFormat is shown before every line; {dir} is replaced with the
	// working directory.
	PromptFormat string
	PeekMax      int

	// RedirectOutput streams the output of external programs through the
	// shell line by line, errors colored. Otherwise they write to Stdout and
	// Stderr directly.
	RedirectOutput bool
	// BuiltinsFirst tries the built-in commands before searching the path.
	BuiltinsFirst bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Settings    Settings
	FileSystem  FileSystem
	Launcher    Launcher
	Resolver    PathResolver
	Interpreter Interpreter
	Handler     CommandHandler
	Keymap      *Keymap
	Logger      *zap.Logger
}

func DefaultConfig() Config {
	return Config{
		Header:         DefaultHeader,
		PromptFormat:   DefaultPromptFormat,
		PeekMax:        DefaultPeekMax,
		RedirectOutput: true,
		Stdin:          os.Stdin,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
	}
}

// withDefaults fills in what New needs and the caller left out.
func (c Config) withDefaults() (Config, error) {
	if c.PromptFormat == "" {
		c.PromptFormat = DefaultPromptFormat
	}
	if c.PeekMax <= 0 {
		c.PeekMax = DefaultPeekMax
	}
	if c.FileSystem == nil {
		fsys, err := NewOSFileSystem("")
		if err != nil {
			return c, err
		}
		c.FileSystem = fsys
	}
	if c.Launcher == nil {
		c.Launcher = ExecLauncher{}
	}
	if c.Resolver == nil {
		c.Resolver = PathLookup{}
	}
	if c.Interpreter == nil {
		c.Interpreter = SystemInterpreter{Launcher: c.Launcher}
	}
	if c.Keymap == nil {
		c.Keymap = DefaultKeymap()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c, nil
}

// ApplySettings overrides the prompt, header and preview size of cfg with
// the values found in settings.
func ApplySettings(cfg *Config, settings Settings) error {
	if settings == nil {
		return nil
	}
	if v, ok := settings.Get(SettingPrompt); ok && v != "" {
		cfg.PromptFormat = v
	}
	if v, ok := settings.Get(SettingHeader); ok {
		cfg.Header = v
	}
	if v, ok := settings.Get(SettingPeekMax); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return fmt.Errorf("setting %s: invalid count %q", SettingPeekMax, v)
		}
		cfg.PeekMax = n
	}
	return nil
}

func formatPrompt(format, dir string) string {
	return strings.NewReplacer("{dir}", dir, "{0}", dir).Replace(format)
}
