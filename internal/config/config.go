package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
	"gopkg.in/yaml.v3"
)

const (
	StoreTypePostgres = "postgres"
	StoreTypeSQLite   = "sqlite"
	StoreTypeMemory   = "memory"

	defaultPort                  = 8000
	defaultEmbeddingDim          = 128
	defaultChunkSize             = 800
	defaultUploadDir             = "/data/uploads"
	defaultTableDescriptionsFile = "/data/uploads/table_descriptions.json"
	defaultGPT4AllURL            = "http://192.168.0.100:4891"
	defaultBackendTimeoutSeconds = 30
	defaultUploadLimitMB         = 50
)

type Config struct {
	Port                  int              `json:"port"`
	JWTSecret             string           `json:"jwt_secret"`
	CORSAllowlist         []string         `json:"cors_allowlist"`
	LogConfig             logger.LogConfig `json:"log_config"`
	Store                 StoreConfig      `json:"store"`
	Database              DatabaseConfig   `json:"database"`
	RAG                   RAGConfig        `json:"rag"`
	UploadDir             string           `json:"upload_dir"`
	TableDescriptionsFile string           `json:"table_descriptions_file"`
	Archive               FileStoreConfig  `json:"archive"`
	EmbedCache            EmbedCacheConfig `json:"embed_cache"`
	InboxJobs             []InboxJobConfig `json:"inbox_jobs"`
	IndexCooldownSeconds  int              `json:"index_cooldown_seconds"`
	UploadLimitMB         int              `json:"upload_limit_mb"`
}

type StoreConfig struct {
	Type       string `json:"type"`
	SQLitePath string `json:"sqlite_path"`
}

type DatabaseConfig struct {
	DSN          string `json:"dsn"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	DBName       string `json:"dbname"`
	SSLMode      string `json:"sslmode"`
	MaxOpenConns int    `json:"max_open_conns"`
}

type RAGConfig struct {
	EmbeddingDim int           `json:"embedding_dim"`
	ChunkSize    int           `json:"chunk_size"`
	Formats      []string      `json:"formats"`
	Workers      int           `json:"workers"`
	Backend      BackendConfig `json:"backend"`
}

type BackendConfig struct {
	Type    string      `json:"type"`
	Timeout int         `json:"timeout"`
	Data    interface{} `json:"data"`
}

// FileStoreConfig selects an upload archive store. An empty type disables it.
type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type EmbedCacheConfig struct {
	Size       int `json:"size"`
	TTLSeconds int `json:"ttl_seconds"`
}

type InboxJobConfig struct {
	TenantID string `json:"pharma_id"`
	Inbox    string `json:"inbox"`
	Archive  string `json:"archive"`
	Spec     string `json:"spec"`
}

// Load reads the optional config file at path (JSON, or YAML by extension),
// loads a .env file from the working directory when present and applies
// environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := &Config{}
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		// YAML is normalised through JSON so that json tags apply to both.
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode config: %w", err)
		}
		if data, err = json.Marshal(raw); err != nil {
			return fmt.Errorf("decode config: %w", err)
		}
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v, ok := envInt("RAG_EMBEDDING_DIM"); ok {
		cfg.RAG.EmbeddingDim = v
	}
	if v, ok := envInt("RAG_CHUNK_SIZE"); ok {
		cfg.RAG.ChunkSize = v
	}
	if v := os.Getenv("RAG_UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("TABLE_DESCRIPTIONS_FILE"); v != "" {
		cfg.TableDescriptionsFile = v
	}
	if model := os.Getenv("GPT4ALL_MODEL"); model != "" {
		url := os.Getenv("GPT4ALL_URL")
		if url == "" {
			url = defaultGPT4AllURL
		}
		cfg.RAG.Backend.Type = "gpt4all"
		cfg.RAG.Backend.Data = map[string]interface{}{"base_url": url, "model": model}
		return
	}
	if url, model := os.Getenv("OLLAMA_URL"), os.Getenv("OLLAMA_MODEL"); url != "" && model != "" {
		cfg.RAG.Backend.Type = "ollama"
		cfg.RAG.Backend.Data = map[string]interface{}{"base_url": url, "model": model}
	}
}

func envInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func applyDefaults(cfg *Config) error {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.RAG.EmbeddingDim == 0 {
		cfg.RAG.EmbeddingDim = defaultEmbeddingDim
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = defaultChunkSize
	}
	if cfg.RAG.EmbeddingDim < 0 {
		return fmt.Errorf("rag.embedding_dim must be > 0")
	}
	if cfg.RAG.ChunkSize < 0 {
		return fmt.Errorf("rag.chunk_size must be > 0")
	}
	if cfg.RAG.Backend.Type == "" {
		cfg.RAG.Backend.Type = "none"
	}
	if cfg.RAG.Backend.Timeout == 0 {
		cfg.RAG.Backend.Timeout = defaultBackendTimeoutSeconds
	}
	if cfg.UploadLimitMB <= 0 {
		cfg.UploadLimitMB = defaultUploadLimitMB
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = defaultUploadDir
	}
	if cfg.TableDescriptionsFile == "" {
		cfg.TableDescriptionsFile = defaultTableDescriptionsFile
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = StoreTypePostgres
	}
	switch cfg.Store.Type {
	case StoreTypePostgres:
		if cfg.Database.DSN == "" && cfg.Database.Host == "" {
			return fmt.Errorf("database.dsn or database.host is required for postgres store")
		}
		if cfg.Database.DSN == "" && cfg.Database.Port == 0 {
			cfg.Database.Port = 5432
		}
	case StoreTypeSQLite:
		if cfg.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for sqlite store")
		}
	case StoreTypeMemory:
	default:
		return fmt.Errorf("store.type must be postgres, sqlite or memory")
	}
	for i, job := range cfg.InboxJobs {
		if job.TenantID == "" || job.Inbox == "" || job.Archive == "" || job.Spec == "" {
			return fmt.Errorf("inbox_jobs[%d]: pharma_id, inbox, archive and spec are required", i)
		}
	}
	return nil
}
