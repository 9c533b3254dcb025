package shell

import (
	"path/filepath"
	"strings"
)

// Switch names are matched without regard to case. On systems where '/'
// separates paths it would make every absolute path a switch, so it is only
// a marker elsewhere.
var switchMarkers = func() []string {
	markers := []string{"--", "-"}
	if filepath.Separator != '/' {
		markers = append(markers, "/")
	}
	return markers
}()

// Arguments is the parsed form of the tokens following a command.
type Arguments struct {
	raw        []string
	positional []string
	switches   []string
	options    map[string]string
}

// ParseArguments sorts args into positional arguments, switches and options.
// optionNames lists the switch names that take the following token as their
// value. An option given at the very end without a value is dropped; a
// repeated option keeps its first value.
func ParseArguments(args []string, optionNames string) *Arguments {
	valued := splitAliases(optionNames)
	a := &Arguments{
		raw:     append([]string(nil), args...),
		options: map[string]string{},
	}

	for i := 0; i < len(args); i++ {
		name, ok := switchName(args[i])
		if !ok {
			a.positional = append(a.positional, args[i])
			continue
		}
		if containsFold(valued, name) {
			if i+1 < len(args) {
				i++
				key := strings.ToLower(name)
				if _, seen := a.options[key]; !seen {
					a.options[key] = args[i]
				}
			}
			continue
		}
		a.switches = append(a.switches, name)
	}
	return a
}

func switchName(arg string) (string, bool) {
	if arg == "-" || arg == "--" {
		return "", false
	}
	for _, marker := range switchMarkers {
		if strings.HasPrefix(arg, marker) && len(arg) > len(marker) {
			return arg[len(marker):], true
		}
	}
	return "", false
}

func splitAliases(names string) []string {
	return strings.FieldsFunc(names, func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})
}

func containsFold(list []string, name string) bool {
	for _, item := range list {
		if strings.EqualFold(item, name) {
			return true
		}
	}
	return false
}

// Raw returns the argument tokens as given.
func (a *Arguments) Raw() []string {
	return append([]string(nil), a.raw...)
}

func (a *Arguments) Len() int {
	return len(a.raw)
}

// Positional returns the i-th argument that is neither a switch nor an
// option value.
func (a *Arguments) Positional(i int) (string, bool) {
	if i < 0 || i >= len(a.positional) {
		return "", false
	}
	return a.positional[i], true
}

func (a *Arguments) PositionalArgs() []string {
	return append([]string(nil), a.positional...)
}

func (a *Arguments) Switches() []string {
	return append([]string(nil), a.switches...)
}

// HasSwitch reports whether any of the '|'-separated aliases was given.
// Names compare case-insensitively.
func (a *Arguments) HasSwitch(aliases string) bool {
	for _, alias := range splitAliases(aliases) {
		if containsFold(a.switches, alias) {
			return true
		}
	}
	return false
}

// Option returns the value of the first alias that was given.
func (a *Arguments) Option(aliases string) (string, bool) {
	for _, alias := range splitAliases(aliases) {
		if value, ok := a.options[strings.ToLower(alias)]; ok {
			return value, true
		}
	}
	return "", false
}
