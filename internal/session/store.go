package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	fileName = "session.json"
	lockName = "session.lock"
)

// Store keeps one session as JSON in a directory. Writers hold an exclusive
// file lock and replace the file by rename, so a reader never sees a torn
// write.
type Store struct {
	dir string
}

// NewStore uses dir, creating it with owner-only permissions on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir is $XDG_CONFIG_HOME/emsctl or the platform equivalent.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "emsctl"), nil
}

func (s *Store) path() string { return filepath.Join(s.dir, fileName) }

func (s *Store) lock() (*flock.Flock, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	fl := flock.New(filepath.Join(s.dir, lockName))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	return fl, nil
}

// Save writes sess, replacing any previous session.
func (s *Store) Save(sess *Session) error {
	fl, err := s.lock()
	if err != nil {
		return err
	}
	defer fl.Unlock()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, fileName+".*")
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path()); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Load returns ErrNoSession when nothing has been saved.
func (s *Store) Load() (*Session, error) {
	fl := flock.New(filepath.Join(s.dir, lockName))
	if _, err := os.Stat(s.dir); err == nil {
		if err := fl.RLock(); err != nil {
			return nil, fmt.Errorf("lock session: %w", err)
		}
		defer fl.Unlock()
	}

	data, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Clear removes the saved session. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	fl, err := s.lock()
	if err != nil {
		return err
	}
	defer fl.Unlock()

	if err := os.Remove(s.path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
