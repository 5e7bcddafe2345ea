// Package runtime holds the command registry and exit-code plumbing shared by
// every anvil command. Cobra owns parsing and dispatch; this package records
// the per-command metadata cobra has no slot for (completion hints, option
// inheritance, workspace requirements) and defines the status codes the client
// reports to its caller.
package runtime

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"
)

// ExitCode is the process exit status reported to the invoking shell.
type ExitCode int

const (
	// Success indicates the command ran to completion.
	Success ExitCode = 0
	// InternalError indicates an unexpected failure inside anvil itself.
	InternalError ExitCode = 1
	// CommandLineError indicates the invocation was malformed: unknown
	// command, bad flag, wrong number of arguments.
	CommandLineError ExitCode = 2
	// LocalEnvironmentError indicates a failure interacting with the local
	// machine: unreadable rc file, unwritable output base, and so on.
	LocalEnvironmentError ExitCode = 36
)

type codedError struct {
	code ExitCode
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }

func (e *codedError) Unwrap() error { return e.err }

// WithCode attaches an exit code to err. A nil err returns nil.
func WithCode(code ExitCode, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// Errorf is fmt.Errorf with an exit code attached.
func Errorf(code ExitCode, format string, args ...any) error {
	return &codedError{code: code, err: fmt.Errorf(format, args...)}
}

// Code extracts the exit code carried by err. Errors without a code map to
// InternalError; nil maps to Success.
func Code(err error) ExitCode {
	if err == nil {
		return Success
	}
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return InternalError
}

// Metadata is the registry entry for a command: everything the help and
// completion surfaces need beyond what the cobra command itself exposes.
type Metadata struct {
	// Completion is the argument-completion hint emitted for shell
	// completion scripts, e.g. "command|{startup_options,target-syntax}".
	Completion string

	// Inherits names commands whose options this command also accepts.
	// Used by the HTML docs emitter to link instead of repeat.
	Inherits []string

	// MustRunInWorkspace requires an enclosing workspace; dispatch fails
	// with CommandLineError when none is found.
	MustRunInWorkspace bool
}

var (
	metaMu sync.RWMutex
	meta   = make(map[*cobra.Command]Metadata)
)

// Register records metadata for cmd. Commands without metadata get the zero
// value, so only commands that need a hint or a workspace have to call this.
func Register(cmd *cobra.Command, m Metadata) {
	metaMu.Lock()
	defer metaMu.Unlock()
	meta[cmd] = m
}

// MetadataFor returns the registered metadata for cmd, or the zero value.
func MetadataFor(cmd *cobra.Command) Metadata {
	metaMu.RLock()
	defer metaMu.RUnlock()
	return meta[cmd]
}

// Commands returns root's subcommands sorted by name. Hidden commands are
// included so callers can decide per surface whether to show them.
func Commands(root *cobra.Command) []*cobra.Command {
	cmds := make([]*cobra.Command, len(root.Commands()))
	copy(cmds, root.Commands())
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
	return cmds
}

// VisibleCommands returns Commands(root) without hidden entries.
func VisibleCommands(root *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, c := range Commands(root) {
		if c.Hidden {
			continue
		}
		cmds = append(cmds, c)
	}
	return cmds
}

// Find returns the subcommand of root with the given name, including hidden
// ones, or nil.
func Find(root *cobra.Command, name string) *cobra.Command {
	for _, c := range Commands(root) {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
