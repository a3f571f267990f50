package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/task-tracker/internal/model"
)

// JSON-backed storage. Single file, human-readable, portable.
// No locking: concurrent writers race and the last rename wins.

// DefaultFileName is used when no path is configured.
const DefaultFileName = "tasks.json"

var (
	// ErrCorruptData marks a backing file whose content does not match the schema.
	ErrCorruptData = errors.New("corrupt data")
	// ErrIO marks a backing file that could not be read or written.
	ErrIO = errors.New("i/o error")
)

// Store loads and saves the whole task collection as one JSON document.
type Store struct {
	path   string
	logger *log.Logger
}

// New returns a Store backed by path. An empty path means DefaultFileName in
// the working directory; a nil logger discards output.
func New(path string, logger *log.Logger) *Store {
	if path == "" {
		path = DefaultFileName
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{path: path, logger: logger}
}

// Path is the backing file location.
func (s *Store) Path() string { return s.path }

// Load reads the collection. A missing or blank file yields an empty
// collection with next_id 1.
func (s *Store) Load() (*model.Collection, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("data file missing, starting empty", "path", s.path)
			return model.NewCollection(), nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, s.path, err)
	}
	if strings.TrimSpace(string(b)) == "" {
		s.logger.Debug("data file blank, starting empty", "path", s.path)
		return model.NewCollection(), nil
	}

	c, legacy, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptData, s.path, err)
	}
	if legacy > 0 {
		s.logger.Warn("normalizing legacy status literal", "path", s.path, "tasks", legacy)
	}
	s.logger.Debug("loaded tasks", "path", s.path, "count", len(c.Tasks), "next_id", c.NextID)
	return c, nil
}

// Save replaces the backing file with c. The document is written to a
// temporary file in the same directory and renamed into place, so readers
// never see a partial write.
func (s *Store) Save(c *model.Collection) error {
	if c.Tasks == nil {
		c.Tasks = []model.Task{}
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	b = append(b, '\n')

	if err := writeFileAtomic(s.path, b, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, s.path, err)
	}
	s.logger.Debug("saved tasks", "path", s.path, "count", len(c.Tasks), "next_id", c.NextID)
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
