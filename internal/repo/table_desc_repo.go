package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// TableDescRepo keeps free-text descriptions of warehouse tables in a JSON
// object file. A missing or unreadable file reads as empty.
type TableDescRepo struct {
	path string
	mu   sync.Mutex
}

func NewTableDescRepo(path string) *TableDescRepo {
	return &TableDescRepo{path: path}
}

func (r *TableDescRepo) List(ctx context.Context) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *TableDescRepo) Get(ctx context.Context, table string) (string, error) {
	data, err := r.List(ctx)
	if err != nil {
		return "", err
	}
	return data[table], nil
}

func (r *TableDescRepo) Save(ctx context.Context, table, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.load(ctx)
	if err != nil {
		return err
	}
	data[table] = strings.TrimSpace(description)
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

func (r *TableDescRepo) load(ctx context.Context) (map[string]string, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		logutil.GetLogger(ctx).Warn("table descriptions file is not valid json, ignoring",
			zap.String("path", r.path), zap.Error(err))
		return map[string]string{}, nil
	}
	return data, nil
}
