// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits command arguments into flags and positionals.
// It accepts:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: anything not starting with "-"
//
// Names passed as boolNames never consume the following argument, so
// "delete -y 04A1B2C3" keeps the UID positional.
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
	raw        []string
}

// NewArgParser parses raw.
//
// Example:
//
//	args := NewArgParser([]string{"--uid", "04A1", "--name=Budi", "-y"}, "y", "yes")
//	args.Flag("uid")     // "04A1"
//	args.Flag("name")    // "Budi"
//	args.BoolFlag("y")   // true
func NewArgParser(raw []string, boolNames ...string) *ArgParser {
	isBool := make(map[string]bool, len(boolNames))
	for _, n := range boolNames {
		isBool[n] = true
	}

	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
		raw:       raw,
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		if arg == "--" {
			p.positional = append(p.positional, raw[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			p.positional = append(p.positional, arg)
			continue
		}

		if name, value, ok := strings.Cut(arg, "="); ok {
			name = strings.TrimLeft(name, "-")
			if value == "true" || value == "false" {
				p.boolFlags[name] = value == "true"
			} else {
				p.flags[name] = value
			}
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if !isBool[name] && i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			p.flags[name] = raw[i+1]
			i++
			continue
		}
		p.boolFlags[name] = true
	}

	return p
}

// Flag returns the first of names that was given a value, or "".
func (p *ArgParser) Flag(names ...string) string {
	for _, name := range names {
		if v, ok := p.flags[strings.TrimLeft(name, "-")]; ok {
			return v
		}
	}
	return ""
}

// FlagDuration parses the named flag as a duration. Bare integers are
// read as seconds.
func (p *ArgParser) FlagDuration(name string, def time.Duration) (time.Duration, error) {
	v := p.Flag(name)
	if v == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		v = strconv.Itoa(n) + "s"
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, NewUsageError("--%s must be a positive duration, got %q", name, p.Flag(name))
	}
	return d, nil
}

// BoolFlag reports whether any of names was set.
func (p *ArgParser) BoolFlag(names ...string) bool {
	for _, name := range names {
		if p.boolFlags[strings.TrimLeft(name, "-")] {
			return true
		}
	}
	return false
}

// Positional returns the positional argument at index, or "".
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns the positionals starting at index.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return nil
	}
	return p.positional[index:]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// Unknown returns flags that are not in known, for usage errors.
func (p *ArgParser) Unknown(known ...string) []string {
	ok := make(map[string]bool, len(known))
	for _, k := range known {
		ok[k] = true
	}
	var out []string
	for name := range p.flags {
		if !ok[name] {
			out = append(out, "--"+name)
		}
	}
	for name := range p.boolFlags {
		if !ok[name] {
			out = append(out, "--"+name)
		}
	}
	sort.Strings(out)
	return out
}

// Raw returns the original arguments.
func (p *ArgParser) Raw() []string {
	return p.raw
}

