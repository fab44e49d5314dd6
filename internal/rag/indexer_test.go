package rag_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/pharmassist/internal/model"
	appErr "github.com/xxxsen/pharmassist/internal/pkg/errors"
	"github.com/xxxsen/pharmassist/internal/rag"
	"github.com/xxxsen/pharmassist/internal/store/memstore"
)

func testSettings() *rag.Settings {
	return &rag.Settings{EmbeddingDim: 32, ChunkSize: 40}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type failingStore struct {
	*memstore.Store
	failOn string
}

func (s *failingStore) Insert(ctx context.Context, chunk *model.DocumentChunk) error {
	if strings.Contains(chunk.Content, s.failOn) {
		return errors.New("connection reset")
	}
	return s.Store.Insert(ctx, chunk)
}

func TestIndex_FolderNotFound(t *testing.T) {
	st := memstore.New()
	ix := rag.NewIndexer(st)
	_, err := ix.Index(context.Background(), "t1", "/nonexistent/path", testSettings())
	require.ErrorIs(t, err, appErr.ErrNotFound)
	require.Equal(t, 0, st.Len())
}

func TestIndex_InvalidSettings(t *testing.T) {
	ix := rag.NewIndexer(memstore.New())
	_, err := ix.Index(context.Background(), "t1", t.TempDir(), &rag.Settings{EmbeddingDim: 0, ChunkSize: 10})
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestIndex_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notice.txt", "Posologie adulte: 1g toutes les 6h.\nNe pas dépasser 4g par jour.\n")
	corrupt := writeFile(t, dir, "broken.pdf", "this is not a pdf")
	writeFile(t, dir, "image.png", "\x89PNG")
	writeFile(t, dir, "empty.txt", "\n\n   \n")

	st := memstore.New()
	res, err := rag.NewIndexer(st, rag.WithWorkers(2)).Index(context.Background(), "t1", dir, testSettings())
	require.NoError(t, err)
	require.Greater(t, res.Inserted, 0)
	require.Equal(t, res.Inserted, st.Len())
	require.Len(t, res.Errors, 1)
	require.Equal(t, corrupt, res.Errors[0].Path)
}

func TestIndex_InvalidUTF8TextIsExtractionError(t *testing.T) {
	dir := t.TempDir()
	latin1 := writeFile(t, dir, "latin1.txt", "m\xe9dicament \xe0 jeun")

	st := memstore.New()
	res, err := rag.NewIndexer(st).Index(context.Background(), "t1", dir, testSettings())
	require.NoError(t, err)
	require.Equal(t, 0, res.Inserted)
	require.Equal(t, 0, st.Len())
	require.Len(t, res.Errors, 1)
	require.Equal(t, latin1, res.Errors[0].Path)
	require.Contains(t, res.Errors[0].Error, appErr.ErrExtraction.Error())
}

func TestIndex_FileTargetIndexesNothing(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notice.txt", "Posologie adulte")

	st := memstore.New()
	res, err := rag.NewIndexer(st).Index(context.Background(), "t1", path, testSettings())
	require.NoError(t, err)
	require.Equal(t, 0, res.Inserted)
	require.Empty(t, res.Errors)
	require.Equal(t, 0, st.Len())
}

func TestIndex_RecursiveWithMetadata(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, filepath.Join("a", "b", "horaires.txt"), "Ouvert du lundi au samedi")

	st := memstore.New()
	res, err := rag.NewIndexer(st).Index(context.Background(), "t1", dir, testSettings())
	require.NoError(t, err)
	require.Equal(t, 1, res.Inserted)
	require.Empty(t, res.Errors)

	rows, err := st.Nearest(context.Background(), "t1", rag.Embed("x", 32), 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, path, rows[0].SourcePath)
	require.Equal(t, "Ouvert du lundi au samedi", rows[0].Content)
	require.Equal(t, map[string]string{"filename": "horaires.txt"}, rows[0].Metadata)
	require.Equal(t, rag.Embed("Ouvert du lundi au samedi", 32), rows[0].Embedding)
}

func TestIndex_StoreFailureIsRecorded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "premier bloc")
	bad := writeFile(t, dir, "b.txt", "ligne ok\n"+strings.Repeat("z", 50)+" BOOM")
	writeFile(t, dir, "c.txt", "troisième bloc")

	st := &failingStore{Store: memstore.New(), failOn: "BOOM"}
	res, err := rag.NewIndexer(st).Index(context.Background(), "t1", dir, testSettings())
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	require.Equal(t, bad, res.Errors[0].Path)
	require.Contains(t, res.Errors[0].Error, appErr.ErrStore.Error())
	// the chunk inserted before the failure is kept
	require.Equal(t, 3, res.Inserted)
	require.Equal(t, 3, st.Len())
}

func TestIndex_FormatsRestrictIngestion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "# Garde\n\nPharmacie de garde le dimanche.")
	writeFile(t, dir, "notice.txt", "texte")

	st := memstore.New()
	settings := testSettings()
	settings.Formats = []string{".md"}
	res, err := rag.NewIndexer(st).Index(context.Background(), "t1", dir, settings)
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	rows, err := st.Nearest(context.Background(), "t1", rag.Embed("x", 32), 5)
	require.NoError(t, err)
	paths := make([]string, 0, len(rows))
	for _, row := range rows {
		paths = append(paths, filepath.Base(row.SourcePath))
	}
	sort.Strings(paths)
	require.NotEmpty(t, paths)
	for _, p := range paths {
		require.Equal(t, "notes.md", p)
	}
}
