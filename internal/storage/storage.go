package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

const (
	DefaultFileName = "tasks.json"
	appName         = "moku"
)

// ErrCorrupt reports a task file that exists but cannot be decoded.
// Callers recover by continuing with an empty list.
var ErrCorrupt = errors.New("corrupt task file")

type Task struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type Store struct {
	path   string
	nextID int
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("data path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	return &Store{path: path, nextID: 1}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load() ([]Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.nextID = 1
			return nil, nil
		}
		return nil, err
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		s.nextID = 1
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	s.nextID = 1
	for _, t := range tasks {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	return tasks, nil
}

// Save rewrites the whole task file through a temp file and rename, so a
// crash mid-write never clobbers a previously-good file.
func (s *Store) Save(tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tasks-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// NextID hands out identifiers from a session-wide high-water mark, so an id
// freed by a delete is never reassigned within the session.
func (s *Store) NextID() int {
	if s.nextID < 1 {
		s.nextID = 1
	}
	id := s.nextID
	s.nextID++
	return id
}

// ResolveDataPath picks the task file location: the user data directory when
// it can be created, the working directory otherwise. The fallback is logged,
// never fatal.
func ResolveDataPath() string {
	base := dataDir()
	if base == "" {
		return DefaultFileName
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn("cannot create data dir, using working directory", "dir", dir, "err", err)
		return DefaultFileName
	}
	path := filepath.Join(dir, DefaultFileName)
	migrateLegacyFile(path)
	return path
}

func dataDir() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		log.Warn("cannot resolve home dir, using working directory", "err", err)
		return ""
	}
	return filepath.Join(home, ".local", "share")
}

// migrateLegacyFile moves a tasks.json left in the working directory by older
// builds into the data directory, once.
func migrateLegacyFile(dst string) {
	if _, err := os.Stat(dst); err == nil {
		return
	}
	data, err := os.ReadFile(DefaultFileName)
	if err != nil {
		return
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		log.Warn("cannot migrate legacy task file", "to", dst, "err", err)
		return
	}
	if err := os.Remove(DefaultFileName); err != nil {
		log.Warn("migrated legacy task file but cannot remove it", "path", DefaultFileName, "err", err)
		return
	}
	log.Info("migrated tasks from working directory", "to", dst)
}
