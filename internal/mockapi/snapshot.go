package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/menuadmin/internal/model"
)

// Snapshot is the whole mock dataset. It is what the --data file holds.
// Single file, human-readable; no locking, one server owns it.
type Snapshot struct {
	Items       []model.MenuItem   `json:"items"`
	Restaurants []model.Restaurant `json:"restaurants"`
	Customers   []model.Customer   `json:"customers"`
	Coupons     []model.Coupon     `json:"coupons"`
	Refunds     []model.Refund     `json:"refunds"`
	Legal       []model.LegalPage  `json:"legal"`
}

// LoadSnapshot reads path. A missing file returns (nil, nil) so the caller
// can seed instead.
func LoadSnapshot(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return &snap, nil
}

// SaveSnapshot writes snap to a temporary file next to path and renames it
// into place, so an interrupted save leaves the previous snapshot intact.
func SaveSnapshot(path string, snap *Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
