package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zalando/go-keyring"
)

// Info is a stored session token.
type Info struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "keyring" | "file"
	CreatedAt time.Time  `json:"created_at"` // when it was saved
	ExpiresAt *time.Time `json:"expires_at"` // optional (JWT exp or server-provided)
}

// Expired reports whether the token carries an expiry before now.
func (i *Info) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// Store persists one session. Load returns (nil, nil) when nothing is
// stored.
type Store interface {
	Load() (*Info, error)
	Save(Info) error
	Delete() error
}

// KeyringStore keeps the session in the OS keychain.
type KeyringStore struct {
	Service string
	User    string
}

func (k KeyringStore) Load() (*Info, error) {
	s, err := keyring.Get(k.Service, k.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("keyring get: %w", err)
	}
	var info Info
	if err := json.Unmarshal([]byte(s), &info); err != nil {
		return nil, fmt.Errorf("parse keyring entry: %w", err)
	}
	info.Source = "keyring"
	return &info, nil
}

func (k KeyringStore) Save(info Info) error {
	info.Source = "keyring"
	b, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := keyring.Set(k.Service, k.User, string(b)); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

func (k KeyringStore) Delete() error {
	if err := keyring.Delete(k.Service, k.User); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}

// FileStore keeps the session in a JSON file readable only by the owner.
type FileStore struct {
	Path string
}

// DefaultFilePath is ~/.menuadmin/credentials.json.
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".menuadmin", "credentials.json"), nil
}

func (f FileStore) Load() (*Info, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var info Info
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	info.Source = "file"
	return &info, nil
}

func (f FileStore) Save(info Info) error {
	info.Source = "file"
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(f.Path, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (f FileStore) Delete() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// FallbackStore prefers Primary and falls back to Secondary when Primary
// is empty or unavailable (no keychain on headless hosts).
type FallbackStore struct {
	Primary   Store
	Secondary Store
}

func (s FallbackStore) Load() (*Info, error) {
	info, perr := s.Primary.Load()
	if perr == nil && info != nil {
		return info, nil
	}
	info, serr := s.Secondary.Load()
	if serr != nil {
		return nil, errors.Join(perr, serr)
	}
	return info, nil
}

func (s FallbackStore) Save(info Info) error {
	perr := s.Primary.Save(info)
	if perr == nil {
		return nil
	}
	if serr := s.Secondary.Save(info); serr != nil {
		return errors.Join(perr, serr)
	}
	return nil
}

func (s FallbackStore) Delete() error {
	return errors.Join(s.Primary.Delete(), s.Secondary.Delete())
}
