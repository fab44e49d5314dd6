package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pharmassist/internal/config"
	"github.com/xxxsen/pharmassist/internal/db"
	"github.com/xxxsen/pharmassist/internal/embedcache"
	"github.com/xxxsen/pharmassist/internal/filestore"
	"github.com/xxxsen/pharmassist/internal/handler"
	"github.com/xxxsen/pharmassist/internal/rag"
	"github.com/xxxsen/pharmassist/internal/repo"
	"github.com/xxxsen/pharmassist/internal/service"
	"github.com/xxxsen/pharmassist/internal/store/memstore"
	"github.com/xxxsen/pharmassist/internal/store/pgstore"
	"github.com/xxxsen/pharmassist/internal/store/sqlitestore"
)

type documentStore interface {
	rag.Store
	handler.Pinger
}

// app holds every long lived component built from one config.
type app struct {
	cfg      *config.Config
	store    documentStore
	kpi      service.KPIProvider
	tables   *repo.TableDescRepo
	settings *rag.Settings
	rag      *service.RAGService
	closers  []func() error
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, tables: repo.NewTableDescRepo(cfg.TableDescriptionsFile)}
	if err := a.openStore(); err != nil {
		a.Close()
		return nil, err
	}
	settings, err := service.NewRAGSettings(cfg.RAG)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.settings = settings

	embedder := embedcache.Wrap(rag.NewHashEmbedder(), cfg.EmbedCache.Size, time.Duration(cfg.EmbedCache.TTLSeconds)*time.Second)
	indexer := rag.NewIndexer(a.store, rag.WithEmbedder(embedder), rag.WithWorkers(cfg.RAG.Workers))
	synth := rag.NewSynthesizer(rag.NewRetriever(a.store, embedder), a.kpi, a.tables)

	uploads, err := filestore.New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": cfg.UploadDir}})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init upload store: %w", err)
	}
	var opts []service.RAGServiceOption
	if cfg.Archive.Type != "" {
		archive, err := filestore.New(cfg.Archive)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init archive store: %w", err)
		}
		opts = append(opts, service.WithArchive(archive))
	}
	a.rag = service.NewRAGService(indexer, synth, settings, uploads, cfg.UploadDir, opts...)

	logutil.GetLogger(context.Background()).Info("engine ready",
		zap.String("store", cfg.Store.Type),
		zap.String("backend", settings.Backend.Name()),
		zap.Int("embedding_dim", settings.EmbeddingDim),
		zap.Int("chunk_size", settings.ChunkSize),
	)
	return a, nil
}

func (a *app) openStore() error {
	switch a.cfg.Store.Type {
	case config.StoreTypePostgres:
		conn, err := db.Open(a.cfg.Database)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		a.closers = append(a.closers, conn.Close)
		if err := db.ApplyMigrations(conn); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		a.store = pgstore.New(conn)
		a.kpi = repo.NewKPIRepo(conn)
	case config.StoreTypeSQLite:
		if err := ensureParent(a.cfg.Store.SQLitePath); err != nil {
			return err
		}
		st, err := sqlitestore.Open(a.cfg.Store.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, st.Close)
		a.store = st
		a.kpi = repo.EmptyKPI{}
	default:
		a.store = memstore.New()
		a.kpi = repo.EmptyKPI{}
	}
	return nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
