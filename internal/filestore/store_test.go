package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/pharmassist/internal/config"
)

type nopCloser struct {
	*strings.Reader
}

func (nopCloser) Close() error { return nil }

func TestCleanKey(t *testing.T) {
	key, err := CleanKey("ph-1/./notice.txt")
	require.NoError(t, err)
	require.Equal(t, "ph-1/notice.txt", key)

	key, err = CleanKey(`ph-1\notice.txt`)
	require.NoError(t, err)
	require.Equal(t, "ph-1/notice.txt", key)

	for _, bad := range []string{"", "/etc/passwd", "../x", "ph-1/../../x", ".."} {
		_, err := CleanKey(bad)
		require.Error(t, err, bad)
	}
}

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": dir}})
	require.NoError(t, err)
	require.Equal(t, "local", store.Type())

	body := "Procédure de rappel de lot"
	require.NoError(t, store.Save(context.Background(), "ph-1/rappel.txt", nopCloser{strings.NewReader(body)}, int64(len(body))))
	raw, err := os.ReadFile(filepath.Join(dir, "ph-1", "rappel.txt"))
	require.NoError(t, err)
	require.Equal(t, body, string(raw))

	require.Error(t, store.Save(context.Background(), "../escape.txt", nopCloser{strings.NewReader("x")}, 1))
}

func TestNewUnknownStore(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp"})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "s3", Data: map[string]interface{}{"bucket": "b"}})
	require.Error(t, err)
}
