package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeWorkspace(t *testing.T, marker string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MarkerFile), []byte(marker), 0644))
	// TempDir may contain symlinks (notably on darwin); Find resolves them.
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	return resolved
}

func TestFind(t *testing.T) {
	root := makeWorkspace(t, "")
	nested := filepath.Join(root, "pkg", "deep")
	require.NoError(t, os.MkdirAll(nested, 0755))

	ws, err := Find(nested)
	require.NoError(t, err)
	assert.Equal(t, root, ws.Root)
	assert.Equal(t, filepath.Base(root), ws.Name)
}

func TestFindAtRoot(t *testing.T) {
	root := makeWorkspace(t, "")
	ws, err := Find(root)
	require.NoError(t, err)
	assert.Equal(t, root, ws.Root)
}

func TestFindNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := Find(dir)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindReadsMarkerName(t *testing.T) {
	root := makeWorkspace(t, "workspace: forge_main\n")
	ws, err := Find(root)
	require.NoError(t, err)
	assert.Equal(t, "forge_main", ws.Name)
}

func TestFindToleratesMalformedMarker(t *testing.T) {
	root := makeWorkspace(t, ":\tnot yaml [")
	ws, err := Find(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), ws.Name)
}

func TestOutputBase(t *testing.T) {
	ws := &Workspace{Root: "/work/a"}
	other := &Workspace{Root: "/work/b"}

	a, err := ws.OutputBase("anvil", "")
	require.NoError(t, err)
	a2, err := ws.OutputBase("anvil", "")
	require.NoError(t, err)
	b, err := other.OutputBase("anvil", "")
	require.NoError(t, err)

	assert.Equal(t, a, a2, "output base must be stable per workspace")
	assert.NotEqual(t, a, b, "distinct workspaces must not collide")
	assert.Contains(t, a, string(filepath.Separator)+"anvil"+string(filepath.Separator))
}

func TestOutputBaseOverride(t *testing.T) {
	ws := &Workspace{Root: "/work/a"}
	base, err := ws.OutputBase("anvil", "/custom/base")
	require.NoError(t, err)
	assert.Equal(t, "/custom/base", base)
}

func TestGitHeadNoRepo(t *testing.T) {
	root := makeWorkspace(t, "")
	ws, err := Find(root)
	require.NoError(t, err)

	_, err = ws.GitHead()
	assert.ErrorIs(t, err, ErrNoGit)
}

// TestGitHead builds a small synthetic history and checks that the reported
// head is the latest commit.
func TestGitHead(t *testing.T) {
	root := makeWorkspace(t, "")

	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	sig := &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()}
	var last string
	for _, name := range []string{"one.txt", "two.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(name), 0644))
		_, err = wt.Add(name)
		require.NoError(t, err)
		hash, err := wt.Commit("commit "+name, &git.CommitOptions{Author: sig})
		require.NoError(t, err)
		last = hash.String()
	}

	ws, err := Find(root)
	require.NoError(t, err)
	head, err := ws.GitHead()
	require.NoError(t, err)
	assert.Equal(t, last, head)
}

func TestGitHeadFromSubdirectory(t *testing.T) {
	root := makeWorkspace(t, "")
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.txt"), []byte("f"), 0644))
	_, err = wt.Add("f.txt")
	require.NoError(t, err)
	hash, err := wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	// A workspace rooted below the repository root still resolves HEAD
	// through DetectDotGit.
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))
	ws := &Workspace{Root: sub, Name: "sub"}
	head, err := ws.GitHead()
	require.NoError(t, err)
	assert.Equal(t, hash.String(), head)
}
