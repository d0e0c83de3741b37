package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalUploadReadDelete(t *testing.T) {
	base := t.TempDir()
	driver := NewLocal(base)
	ctx := context.Background()

	path := "professores/p1/produtos/c1/aulas/a1/video.mp4"
	storagePath, publicURL, err := driver.Upload(ctx, strings.NewReader("conteudo"), path)
	require.NoError(t, err)
	require.Equal(t, path, storagePath)
	require.Equal(t, "/uploads/"+path, publicURL)

	exists, err := driver.Exists(ctx, path)
	require.NoError(t, err)
	require.True(t, exists)

	reader, err := driver.Reader(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	require.Equal(t, "conteudo", string(data))

	require.NoError(t, driver.Delete(ctx, path))

	exists, err = driver.Exists(ctx, path)
	require.NoError(t, err)
	require.False(t, exists)

	// The per-aula directory tree is cleaned up with the last file.
	_, err = os.Stat(filepath.Join(base, "professores"))
	require.True(t, os.IsNotExist(err))
}

func TestLocalDeleteMissingFileIsNoop(t *testing.T) {
	driver := NewLocal(t.TempDir())
	require.NoError(t, driver.Delete(context.Background(), "nope/missing.bin"))
}
