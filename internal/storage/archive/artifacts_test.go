package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	store, err := Open(Options{Type: BackendNone})
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = Open(Options{Type: BackendLocalFS, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalFS{}, store)

	store, err = Open(Options{Type: BackendS3, S3: S3Config{Bucket: "b"}})
	require.NoError(t, err)
	assert.IsType(t, &S3Storage{}, store)

	_, err = Open(Options{Type: "ftp"})
	assert.Error(t, err)
}

func TestArtifacts_SaveAndLoad(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	a := NewArtifacts(fs)
	ctx := context.Background()

	written, err := a.SaveSweep(ctx, "sweep-1", map[string][]byte{
		"summary.json": []byte("{}"),
		"results.csv":  []byte("a,b\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sweeps/sweep-1/results.csv", "sweeps/sweep-1/summary.json"}, written)

	_, err = a.SaveSweep(ctx, "sweep-2", map[string][]byte{"results.csv": []byte("c,d\n")})
	require.NoError(t, err)

	got, err := a.Load(ctx, "sweep-1", "results.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(got))

	names, err := a.Files(ctx, "sweep-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"results.csv", "summary.json"}, names)

	ids, err := a.Sweeps(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sweep-1", "sweep-2"}, ids)
}

func TestArtifacts_EmptyID(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)

	_, err = NewArtifacts(fs).SaveSweep(context.Background(), "", map[string][]byte{"a": nil})
	assert.Error(t, err)
}
