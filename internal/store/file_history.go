package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/models"
)

// maxHistoryLine bounds a single JSON-lines record.
const maxHistoryLine = 1 << 20

// fileHistoryRepository stores one JSON object per line. Lines that fail
// to decode are skipped with a warning, so a damaged file never hides the
// records that are still readable.
type fileHistoryRepository struct {
	fs     afero.Fs
	path   string
	mu     sync.Mutex
	logger *logger.Logger
}

// NewFileHistoryRepository returns a JSON-lines [HistoryRepository] at path.
func NewFileHistoryRepository(fsys afero.Fs, path string, logger *logger.Logger) HistoryRepository {
	return &fileHistoryRepository{
		fs:     fsys,
		path:   path,
		logger: logger,
	}
}

func (f *fileHistoryRepository) SaveRecord(ctx context.Context, record models.HistoryRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode history record: %w", err)
	}
	line = append(line, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	if f.endsMidLine() {
		line = append([]byte{'\n'}, line...)
	}

	file, err := f.fs.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		f.logger.Err(err).Str("func", "fileHistoryRepository.SaveRecord").Msg("failed to open history file")
		return fmt.Errorf("open history file: %w", err)
	}

	if _, err := file.Write(line); err != nil {
		_ = file.Close()
		f.logger.Err(err).Str("func", "fileHistoryRepository.SaveRecord").Msg("failed to append history record")
		return fmt.Errorf("append history record: %w", err)
	}
	return file.Close()
}

// endsMidLine reports whether a previous write was torn, leaving the file
// without a trailing newline.
func (f *fileHistoryRepository) endsMidLine() bool {
	file, err := f.fs.Open(f.path)
	if err != nil {
		return false
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.Size() == 0 {
		return false
	}

	last := make([]byte, 1)
	if n, _ := file.ReadAt(last, info.Size()-1); n != 1 {
		return false
	}
	return last[0] != '\n'
}

func (f *fileHistoryRepository) ListRecords(ctx context.Context) ([]models.HistoryRecord, error) {
	f.mu.Lock()
	data, err := afero.ReadFile(f.fs, f.path)
	f.mu.Unlock()

	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var records []models.HistoryRecord
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), maxHistoryLine)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var r models.HistoryRecord
		if err := json.Unmarshal(line, &r); err != nil || r.ID == "" {
			f.logger.Warn().
				Str("func", "fileHistoryRepository.ListRecords").
				Str("path", f.path).
				Int("line", lineNo).
				Msg("skipping malformed history line")
			continue
		}
		records = append(records, r)
	}
	if err := sc.Err(); err != nil {
		f.logger.Warn().Err(err).
			Str("func", "fileHistoryRepository.ListRecords").
			Msg("history file truncated at an oversized line")
	}

	return records, nil
}
