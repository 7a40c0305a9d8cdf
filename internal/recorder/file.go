package recorder

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"KursPajak/internal/exporter"
)

// FileRecorder writes each export into a directory, replacing the previous file
// of the same name.
type FileRecorder struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileRecorder creates the output directory if needed.
func NewFileRecorder(dir string, logger *slog.Logger) (*FileRecorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileRecorder{dir: dir, logger: logger}, nil
}

// RecordExport writes p.Data atomically and returns the final path.
func (r *FileRecorder) RecordExport(p *exporter.Payload) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := filepath.Join(r.dir, filepath.Base(p.Filename))
	tmp, err := os.CreateTemp(r.dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(p.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move export into place: %w", err)
	}

	r.logger.Info("export written",
		slog.String("path", path),
		slog.String("format", string(p.Format)),
		slog.Int("rows", p.Rows),
		slog.Int("bytes", len(p.Data)))
	return path, nil
}

func (r *FileRecorder) Close() error { return nil }
