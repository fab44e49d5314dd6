package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "RAG_EMBEDDING_DIM", "RAG_CHUNK_SIZE", "RAG_UPLOAD_DIR",
		"TABLE_DESCRIPTIONS_FILE", "GPT4ALL_URL", "GPT4ALL_MODEL", "OLLAMA_URL", "OLLAMA_MODEL",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{"store":{"type":"memory"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.Equal(t, 128, cfg.RAG.EmbeddingDim)
	require.Equal(t, 800, cfg.RAG.ChunkSize)
	require.Equal(t, "none", cfg.RAG.Backend.Type)
	require.Equal(t, 30, cfg.RAG.Backend.Timeout)
	require.Equal(t, "/data/uploads", cfg.UploadDir)
	require.Equal(t, "/data/uploads/table_descriptions.json", cfg.TableDescriptionsFile)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
port: 9000
store:
  type: sqlite
  sqlite_path: /tmp/rag.db
rag:
  chunk_size: 300
  formats: [".txt", ".md"]
  backend:
    type: ollama
    data:
      base_url: http://localhost:11434
      model: llama3
inbox_jobs:
  - pharma_id: ph-1
    inbox: /srv/inbox
    archive: /srv/archive
    spec: "@every 5m"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Port)
	require.Equal(t, StoreTypeSQLite, cfg.Store.Type)
	require.Equal(t, 300, cfg.RAG.ChunkSize)
	require.Equal(t, []string{".txt", ".md"}, cfg.RAG.Formats)
	require.Equal(t, "ollama", cfg.RAG.Backend.Type)
	require.Len(t, cfg.InboxJobs, 1)
	require.Equal(t, "ph-1", cfg.InboxJobs[0].TenantID)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/pharma?sslmode=disable")
	t.Setenv("RAG_EMBEDDING_DIM", "64")
	t.Setenv("RAG_CHUNK_SIZE", "400")
	t.Setenv("RAG_UPLOAD_DIR", "/tmp/uploads")
	t.Setenv("OLLAMA_URL", "http://ollama:11434")
	t.Setenv("OLLAMA_MODEL", "mistral")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, StoreTypePostgres, cfg.Store.Type)
	require.Equal(t, "postgres://u:p@db:5432/pharma?sslmode=disable", cfg.Database.DSN)
	require.Equal(t, 64, cfg.RAG.EmbeddingDim)
	require.Equal(t, 400, cfg.RAG.ChunkSize)
	require.Equal(t, "/tmp/uploads", cfg.UploadDir)
	require.Equal(t, "ollama", cfg.RAG.Backend.Type)
	require.Equal(t, map[string]interface{}{"base_url": "http://ollama:11434", "model": "mistral"}, cfg.RAG.Backend.Data)
}

func TestLoadGPT4AllTakesPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/pharma")
	t.Setenv("GPT4ALL_MODEL", "orca-mini")
	t.Setenv("OLLAMA_URL", "http://ollama:11434")
	t.Setenv("OLLAMA_MODEL", "mistral")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "gpt4all", cfg.RAG.Backend.Type)
	require.Equal(t, map[string]interface{}{"base_url": "http://192.168.0.100:4891", "model": "orca-mini"}, cfg.RAG.Backend.Data)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"missing database": `{}`,
		"missing sqlite":   `{"store":{"type":"sqlite"}}`,
		"unknown store":    `{"store":{"type":"redis"}}`,
		"bad inbox job":    `{"store":{"type":"memory"},"inbox_jobs":[{"pharma_id":"p"}]}`,
		"negative chunk":   `{"store":{"type":"memory"},"rag":{"chunk_size":-1}}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.json", content))
			require.Error(t, err)
		})
	}
}
