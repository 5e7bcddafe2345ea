// Package rcfile parses anvilrc files: per-invocation default options keyed
// by command name. The chain is /etc/anvil.anvilrc, ~/.anvilrc, then the
// workspace .anvilrc, with later files winning because their options parse
// last.
//
// Line grammar:
//
//	# comment
//	<command> --flag value --other    options for one command
//	common --flag                     options for every command
//	startup --output_base=...         options parsed before the command
//	import /path/to/rc                include another file, must exist
//	try-import /path/to/rc            include another file if present
package rcfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
)

// Scopes with meaning beyond a command name.
const (
	ScopeCommon  = "common"
	ScopeStartup = "startup"
)

// Directive is one parsed rc line: the scope it applies to and its args.
type Directive struct {
	Scope string
	Args  []string
	// File is the rc file the directive came from, for diagnostics.
	File string
}

// Load parses the rc file at path, expanding import and try-import lines.
// Relative import paths resolve against the importing file's directory.
// Import cycles are an error.
func Load(path string) ([]Directive, error) {
	return load(path, make(map[string]bool))
}

// LoadAll loads every path that exists, in order. A missing file in the
// chain is skipped; any other read error is reported.
func LoadAll(paths []string) ([]Directive, error) {
	var all []Directive
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		ds, err := Load(p)
		if err != nil {
			return nil, err
		}
		all = append(all, ds...)
	}
	return all, nil
}

func load(path string, visiting map[string]bool) ([]Directive, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving rc file %q: %w", path, err)
	}
	if visiting[abs] {
		return nil, fmt.Errorf("rc file import cycle at %s", abs)
	}
	visiting[abs] = true
	defer delete(visiting, abs)

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading rc file: %w", err)
	}

	var directives []Directive
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens, err := shlex.Split(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", abs, i+1, err)
		}
		if len(tokens) == 0 {
			continue
		}
		scope, args := tokens[0], tokens[1:]

		switch scope {
		case "import", "try-import":
			if len(args) != 1 {
				return nil, fmt.Errorf("%s:%d: %s takes exactly one path", abs, i+1, scope)
			}
			target := args[0]
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(abs), target)
			}
			imported, err := load(target, visiting)
			if err != nil {
				if scope == "try-import" && errors.Is(err, os.ErrNotExist) {
					continue
				}
				return nil, err
			}
			directives = append(directives, imported...)
		default:
			if len(args) == 0 {
				return nil, fmt.Errorf("%s:%d: no options after %q", abs, i+1, scope)
			}
			directives = append(directives, Directive{Scope: scope, Args: args, File: abs})
		}
	}
	return directives, nil
}

// ArgsFor returns the args rc files contribute to an invocation of command:
// every common directive followed by every directive for the command itself,
// in file order. Explicit command-line args are appended after these by the
// caller, so they win.
func ArgsFor(directives []Directive, command string) []string {
	var args []string
	for _, d := range directives {
		if d.Scope == ScopeCommon {
			args = append(args, d.Args...)
		}
	}
	for _, d := range directives {
		if d.Scope == command {
			args = append(args, d.Args...)
		}
	}
	return args
}

// StartupArgs returns the args contributed to the startup option set.
func StartupArgs(directives []Directive) []string {
	var args []string
	for _, d := range directives {
		if d.Scope == ScopeStartup {
			args = append(args, d.Args...)
		}
	}
	return args
}

// DefaultPaths returns the rc chain for a workspace root: the system file,
// the user file, then the workspace file. workspaceRoot may be empty when
// the invocation is outside a workspace.
func DefaultPaths(product, workspaceRoot string) []string {
	paths := []string{filepath.Join("/etc", product+"."+product+"rc")}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+product+"rc"))
	}
	if workspaceRoot != "" {
		paths = append(paths, filepath.Join(workspaceRoot, "."+product+"rc"))
	}
	return paths
}
