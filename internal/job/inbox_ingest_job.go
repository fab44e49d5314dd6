package job

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pharmassist/internal/model"
)

type FolderIndexer interface {
	Index(ctx context.Context, tenantID, folder string) (*model.IngestResult, error)
}

// InboxIngestJob moves the files present in a drop folder into
// <archive>/<yyyymmddhhmmss>/ and indexes that folder for one tenant. Files
// that fail go back to the inbox for the next run. Files dropped while a run
// is in progress are left for the next run.
type InboxIngestJob struct {
	indexer  FolderIndexer
	tenantID string
	inbox    string
	archive  string
	now      func() time.Time
}

func NewInboxIngestJob(indexer FolderIndexer, tenantID, inbox, archive string) *InboxIngestJob {
	return &InboxIngestJob{
		indexer:  indexer,
		tenantID: tenantID,
		inbox:    inbox,
		archive:  archive,
		now:      time.Now,
	}
}

func (j *InboxIngestJob) Name() string {
	return "inbox_ingest:" + j.tenantID
}

func (j *InboxIngestJob) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx).With(zap.String("pharma_id", j.tenantID), zap.String("inbox", j.inbox))
	if err := os.MkdirAll(j.inbox, 0o755); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}
	files, err := listFiles(j.inbox)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Debug("inbox empty")
		return nil
	}
	dest := filepath.Join(j.archive, j.now().Format("20060102150405"))
	staged := make([]string, 0, len(files))
	for _, path := range files {
		rel, err := filepath.Rel(j.inbox, path)
		if err != nil {
			return err
		}
		if err := moveFile(path, filepath.Join(dest, rel)); err != nil {
			j.restore(logger, dest, staged)
			return fmt.Errorf("archive %s: %w", rel, err)
		}
		staged = append(staged, rel)
	}

	res, err := j.indexer.Index(ctx, j.tenantID, dest)
	if err != nil {
		j.restore(logger, dest, staged)
		return err
	}
	var failed []string
	for _, e := range res.Errors {
		rel, err := filepath.Rel(dest, e.Path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		failed = append(failed, rel)
	}
	j.restore(logger, dest, failed)
	logger.Info("inbox ingested",
		zap.Int("indexed", res.Inserted),
		zap.Int("errors", len(res.Errors)),
		zap.Int("archived", len(staged)-len(failed)),
	)
	return nil
}

// restore moves rels from dest back into the inbox and drops the folders it
// leaves empty.
func (j *InboxIngestJob) restore(logger *zap.Logger, dest string, rels []string) {
	for _, rel := range rels {
		if err := moveFile(filepath.Join(dest, rel), filepath.Join(j.inbox, rel)); err != nil {
			logger.Error("restore inbox file failed", zap.String("file", rel), zap.Error(err))
		}
	}
	removeEmptyDirs(dest)
}

func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.Rename(src, dst)
}

func removeEmptyDirs(root string) {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = os.Remove(dirs[i])
	}
}

func listFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return files, nil
}
