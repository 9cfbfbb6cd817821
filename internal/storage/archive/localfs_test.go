package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/bankroll/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS_ImplementsStore(t *testing.T) {
	var _ Store = (*LocalFS)(nil)
}

func TestLocalFS_PutGet(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("capital_per_trade,ending_equity\n0.5,1065.9\n")

	require.NoError(t, fs.Put(ctx, "sweeps/abc/results.csv", data))

	got, err := fs.Get(ctx, "sweeps/abc/results.csv")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// overwrite
	require.NoError(t, fs.Put(ctx, "sweeps/abc/results.csv", []byte("x")))
	got, err = fs.Get(ctx, "sweeps/abc/results.csv")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}

func TestLocalFS_GetMissing(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)

	_, err = fs.Get(context.Background(), "nope.csv")
	assert.ErrorIs(t, err, core.ErrArtifactNotFound)
}

func TestLocalFS_RejectsEscapingPaths(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, p := range []string{"../outside.csv", "a/../../outside.csv", "/etc/passwd"} {
		err := fs.Put(ctx, p, []byte("x"))
		assert.ErrorIs(t, err, core.ErrInvalidPath, p)
	}
}

func TestLocalFS_Exists(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	exists, err := fs.Exists(ctx, "nonexistent.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, fs.Put(ctx, "exists.txt", []byte("data")))
	exists, err = fs.Exists(ctx, "exists.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalFS_List(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fs.Put(ctx, "sweeps/b/results.csv", []byte("b")))
	require.NoError(t, fs.Put(ctx, "sweeps/a/rows.csv", []byte("a")))
	require.NoError(t, fs.Put(ctx, "sweeps/a/results.csv", []byte("a")))
	require.NoError(t, fs.Put(ctx, "other/c.txt", []byte("c")))

	paths, err := fs.List(ctx, "sweeps/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"sweeps/a/results.csv", "sweeps/a/rows.csv"}, paths)

	paths, err = fs.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLocalFS_Delete(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewLocalFS(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fs.Put(ctx, "delete.txt", []byte("data")))
	require.NoError(t, fs.Delete(ctx, "delete.txt"))

	_, err = os.Stat(filepath.Join(dir, "delete.txt"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is not an error
	assert.NoError(t, fs.Delete(ctx, "delete.txt"))
}

func TestNewLocalFS_EmptyPath(t *testing.T) {
	_, err := NewLocalFS("")
	assert.ErrorIs(t, err, core.ErrConfigMissing)
}
