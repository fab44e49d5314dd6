// Package extract turns files on disk into normalized text, dispatching on
// the file extension.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	appErr "github.com/xxxsen/pharmassist/internal/pkg/errors"
)

// Func reads the file at path and returns its text.
type Func func(path string) (string, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Func{}
)

// DefaultFormats are the extensions ingested when no list is configured.
var DefaultFormats = []string{".txt", ".pdf", ".docx"}

func Register(ext string, fn Func) {
	key := normalizeExt(ext)
	if key == "" || fn == nil {
		return
	}
	registryMu.Lock()
	registry[key] = fn
	registryMu.Unlock()
}

// Supported lists every registered extension.
func Supported() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for ext := range registry {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extractor is bound to an allow-list of extensions.
type Extractor struct {
	formats map[string]Func
}

// New returns an extractor for formats, or DefaultFormats when empty.
func New(formats []string) (*Extractor, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	e := &Extractor{formats: make(map[string]Func, len(formats))}
	for _, f := range formats {
		key := normalizeExt(f)
		fn, ok := registry[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", appErr.ErrUnsupportedFormat, f)
		}
		e.formats[key] = fn
	}
	return e, nil
}

// Accepts reports whether path has an enabled extension.
func (e *Extractor) Accepts(path string) bool {
	_, ok := e.formats[normalizeExt(filepath.Ext(path))]
	return ok
}

// Extract returns the text of path. Files with a disabled extension yield an
// empty string and no error.
func (e *Extractor) Extract(path string) (string, error) {
	fn, ok := e.formats[normalizeExt(filepath.Ext(path))]
	if !ok {
		return "", nil
	}
	return fn(path)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func readPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not valid utf-8", filepath.Base(path))
	}
	return string(data), nil
}

func init() {
	Register(".txt", readPlainText)
}
