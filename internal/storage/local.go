package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jewelcase/jewelcase/internal/model"
)

// LocalStorage keeps images on the local filesystem under root.
// The directory tree is the only index: nothing is cached in memory.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

// Save writes the file with O_EXCL so concurrent uploads can never clobber each other.
// A partially written file is removed; created directories are kept.
func (s *LocalStorage) Save(ctx context.Context, p string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	filePath, err := s.resolve(p)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(filePath), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrExists
		}
		return fmt.Errorf("failed to create file: %w", err)
	}

	_, err = io.Copy(file, r)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := os.Remove(filePath); rmErr != nil {
			slog.Error("failed to remove partial file", "error", rmErr, "path", filePath)
		}
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func (s *LocalStorage) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirPath, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}

	// os.ReadDir sorts by filename
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

// Handler serves stored files with a type taken from their image extension.
// http.FileServer keeps a Content-Type that is already set, so nothing is
// ever served as markup.
func (s *LocalStorage) Handler() http.Handler {
	files := http.FileServer(fileOnlyFS{http.Dir(s.root)})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeFor(r.URL.Path))
		files.ServeHTTP(w, r)
	})
}

func contentTypeFor(key string) string {
	if ct := model.ContentTypeOf(key); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// resolve maps a storage path to a filesystem path that cannot escape root
func (s *LocalStorage) resolve(p string) (string, error) {
	cleaned := path.Clean("/" + p)
	if cleaned == "/" {
		return "", fmt.Errorf("invalid storage path %q", p)
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// fileOnlyFS hides directories so the file server never renders listings
type fileOnlyFS struct {
	http.FileSystem
}

func (f fileOnlyFS) Open(name string) (http.File, error) {
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}

	return file, nil
}
