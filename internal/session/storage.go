package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"parley/internal/models"
)

// persistedState is the on-disk session: the scrubbed user plus the session
// cookie value, enough to come back as the same identity after a restart.
type persistedState struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *Store) persist() error {
	if s.file == "" {
		return nil
	}
	state := persistedState{Token: s.api.SessionToken()}
	s.mu.RLock()
	state.User = s.session.User
	s.mu.RUnlock()

	encoded, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.file), 0o700); err != nil {
		return err
	}
	// 0600: the file holds a live session token.
	return os.WriteFile(s.file, encoded, 0o600)
}

func (s *Store) load() (*persistedState, error) {
	if s.file == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(s.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var state persistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) discard() error {
	if s.file == "" {
		return nil
	}
	if err := os.Remove(s.file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
