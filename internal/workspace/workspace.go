// Package workspace locates the enclosing anvil workspace and derives the
// per-workspace paths and facts other packages need: the output base, the
// log locations, and the committed git revision.
package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"gopkg.in/yaml.v3"
)

// MarkerFile is the file whose presence makes a directory a workspace root.
const MarkerFile = "ANVIL.yaml"

// ErrNotFound is returned when no ancestor directory contains a marker file.
var ErrNotFound = errors.New("not in a workspace (no " + MarkerFile + " found in any parent directory)")

// Marker is the parsed content of the ANVIL.yaml marker file.
type Marker struct {
	// Workspace is the declared workspace name; optional.
	Workspace string `yaml:"workspace"`
}

// Workspace describes a located workspace.
type Workspace struct {
	// Root is the absolute, symlink-resolved workspace root directory.
	Root string
	// Name is the declared workspace name, or the root's base name.
	Name string
}

// Find walks upward from dir looking for the marker file.
func Find(dir string) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", dir, err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", dir, err)
	}

	for cur := abs; ; cur = filepath.Dir(cur) {
		marker := filepath.Join(cur, MarkerFile)
		if info, err := os.Stat(marker); err == nil && !info.IsDir() {
			ws := &Workspace{Root: cur, Name: filepath.Base(cur)}
			if data, err := os.ReadFile(marker); err == nil {
				var m Marker
				if yaml.Unmarshal(data, &m) == nil && m.Workspace != "" {
					ws.Name = m.Workspace
				}
			}
			return ws, nil
		}
		if cur == filepath.Dir(cur) {
			return nil, ErrNotFound
		}
	}
}

// OutputBase returns the output base for the workspace: override when given,
// otherwise a directory under the user cache dir keyed by a digest of the
// workspace root so distinct workspaces never collide.
func (w *Workspace) OutputBase(product, override string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache dir: %w", err)
	}
	sum := sha256.Sum256([]byte(w.Root))
	return filepath.Join(cache, product, hex.EncodeToString(sum[:8])), nil
}

// GitHead returns the commit hash of HEAD when the workspace root is inside
// a git repository. A workspace without version control returns ErrNoGit.
func (w *Workspace) GitHead() (string, error) {
	repo, err := git.PlainOpenWithOptions(w.Root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", ErrNoGit
		}
		return "", fmt.Errorf("opening repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// ErrNoGit is returned by GitHead when the workspace is not a git repository.
var ErrNoGit = errors.New("workspace is not a git repository")
