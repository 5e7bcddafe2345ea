package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/anvil-build/anvil/internal/config"
	"github.com/anvil-build/anvil/internal/history"
	"github.com/anvil-build/anvil/internal/runtime"
	"github.com/anvil-build/anvil/internal/ui"
	"github.com/anvil-build/anvil/internal/workspace"
)

func TestFindCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "bare command",
			args: []string{"info"},
			want: "info",
		},
		{
			name: "startup flag with equals before command",
			args: []string{"--output_base=/tmp/b", "clean"},
			want: "clean",
		},
		{
			name: "startup flag with separate value before command",
			args: []string{"--output_base", "/tmp/b", "clean"},
			want: "clean",
		},
		{
			name: "bool startup flag before command",
			args: []string{"--ignore_all_rc_files", "help"},
			want: "help",
		},
		{
			name: "no command",
			args: []string{"--verbose"},
			want: "",
		},
		{
			name: "empty",
			args: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findCommand(tt.args); got != tt.want {
				t.Errorf("findCommand(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestExpandNegativeBoolArgs(t *testing.T) {
	fs := rootCmd.PersistentFlags()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "known bool gets rewritten",
			args: []string{"--noblock_for_lock", "info"},
			want: []string{"--block_for_lock=false", "info"},
		},
		{
			name: "nohistory",
			args: []string{"--nohistory", "clean"},
			want: []string{"--history=false", "clean"},
		},
		{
			name: "unknown flag left alone",
			args: []string{"--nosuchthing"},
			want: []string{"--nosuchthing"},
		},
		{
			name: "non-bool flag left alone",
			args: []string{"--output_base=/tmp/b"},
			want: []string{"--output_base=/tmp/b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandNegativeBoolArgs(tt.args, fs)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expandNegativeBoolArgs(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestBoolFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{
			name: "absent",
			args: []string{"info"},
			want: false,
		},
		{
			name: "bare",
			args: []string{"--ignore_all_rc_files", "info"},
			want: true,
		},
		{
			name: "explicit true",
			args: []string{"--ignore_all_rc_files=true", "info"},
			want: true,
		},
		{
			name: "explicit false",
			args: []string{"--ignore_all_rc_files=false", "info"},
			want: false,
		},
		{
			name: "negative spelling",
			args: []string{"--noignore_all_rc_files", "info"},
			want: false,
		},
		{
			name: "last spelling wins",
			args: []string{"--ignore_all_rc_files", "--ignore_all_rc_files=false"},
			want: false,
		},
		{
			name: "unparsable value ignored",
			args: []string{"--ignore_all_rc_files", "--ignore_all_rc_files=maybe"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := boolFlag(tt.args, "ignore_all_rc_files"); got != tt.want {
				t.Errorf("boolFlag(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestFlagValue(t *testing.T) {
	args := []string{"--anvilrc", "/tmp/rc", "info"}
	if got := flagValue(args, "anvilrc"); got != "/tmp/rc" {
		t.Errorf("flagValue() = %q, want /tmp/rc", got)
	}
	if got := flagValue([]string{"--anvilrc=/other"}, "anvilrc"); got != "/other" {
		t.Errorf("flagValue() = %q, want /other", got)
	}
	if got := flagValue(args, "output_base"); got != "" {
		t.Errorf("flagValue() = %q, want empty", got)
	}
}

func TestInjectRcArgs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	wsDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(wsDir, workspace.MarkerFile), nil, 0644); err != nil {
		t.Fatal(err)
	}
	rc := "startup --output_base=/tmp/rcbase\ncommon --verbose\nclean --expunge\n"
	if err := os.WriteFile(filepath.Join(wsDir, ".anvilrc"), []byte(rc), 0644); err != nil {
		t.Fatal(err)
	}

	prev := currentWorkspace
	currentWorkspace = &workspace.Workspace{Root: wsDir, Name: "ws"}
	t.Cleanup(func() { currentWorkspace = prev })

	got, err := injectRcArgs([]string{"clean", "--limit=1"})
	if err != nil {
		t.Fatalf("injectRcArgs() error = %v", err)
	}
	want := []string{"--output_base=/tmp/rcbase", "clean", "--verbose", "--expunge", "--limit=1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("injectRcArgs() = %v, want %v", got, want)
	}
}

func TestInjectRcArgsIgnored(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	args := []string{"--ignore_all_rc_files", "clean"}
	got, err := injectRcArgs(args)
	if err != nil {
		t.Fatalf("injectRcArgs() error = %v", err)
	}
	if !reflect.DeepEqual(got, args) {
		t.Errorf("injectRcArgs() = %v, want args unchanged", got)
	}
}

func TestInjectRcArgsExplicitFalse(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	wsDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(wsDir, workspace.MarkerFile), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(wsDir, ".anvilrc"), []byte("startup --output_base=/tmp/rcbase\n"), 0644); err != nil {
		t.Fatal(err)
	}

	prev := currentWorkspace
	currentWorkspace = &workspace.Workspace{Root: wsDir, Name: "ws"}
	t.Cleanup(func() { currentWorkspace = prev })

	got, err := injectRcArgs([]string{"--ignore_all_rc_files=false", "clean"})
	if err != nil {
		t.Fatalf("injectRcArgs() error = %v", err)
	}
	want := []string{"--output_base=/tmp/rcbase", "--ignore_all_rc_files=false", "clean"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("injectRcArgs() = %v, want rc args injected", got)
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	silenceOutput(t)

	if code := execute([]string{"frobnicate"}); code != runtime.CommandLineError {
		t.Errorf("execute() = %d, want %d", code, runtime.CommandLineError)
	}
}

func TestExecuteVersion(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	silenceOutput(t)

	if code := execute([]string{"version"}); code != runtime.Success {
		t.Errorf("execute() = %d, want %d", code, runtime.Success)
	}
}

func TestExecuteOutsideWorkspace(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	silenceOutput(t)

	var buf strings.Builder
	ui.SetWriter(&buf)
	t.Cleanup(func() { ui.SetWriter(discard{}) })

	if code := execute([]string{"info"}); code != runtime.CommandLineError {
		t.Errorf("execute() = %d, want %d", code, runtime.CommandLineError)
	}
	if !strings.Contains(buf.String(), "only supported from within a workspace") {
		t.Errorf("stderr = %q, want workspace requirement message", buf.String())
	}
}

func TestRecordInvocationPrunes(t *testing.T) {
	prevBase, prevCfg, prevID := outputBase, globalCfg, invocationID
	outputBase = t.TempDir()
	globalCfg = &config.Global{History: config.HistoryConfig{Enabled: true, RetentionDays: 30}}
	invocationID = history.NewID()
	t.Cleanup(func() { outputBase, globalCfg, invocationID = prevBase, prevCfg, prevID })

	dbPath := filepath.Join(outputBase, "history.db")
	store, err := history.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Record(history.Invocation{Command: "stale", Started: time.Now().AddDate(0, 0, -60)}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	recordInvocation("info", []string{"info"}, runtime.Success, time.Millisecond)

	store, err = history.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	invocations, err := store.List(history.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(invocations) != 1 {
		t.Fatalf("len(List()) = %d, want stale entry pruned", len(invocations))
	}
	if invocations[0].Command != "info" {
		t.Errorf("surviving command = %q, want info", invocations[0].Command)
	}
}

// silenceOutput routes command and ui output away from the test's stdio and
// resets per-invocation state touched by execute.
func silenceOutput(t *testing.T) {
	t.Helper()
	ui.SetWriter(discard{})
	rootCmd.SetOut(discard{})
	rootCmd.SetErr(discard{})
	outputBase = ""
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
