package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hucha-app/hucha-api/models"
	"github.com/hucha-app/hucha-api/utils"
)

// LocalStore is the single-slot fallback: one JSON file holding the whole
// document. There is no locking here; the mutator is the sole writer and
// serializes its own calls.
type LocalStore struct {
	path string
}

func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

// Load reads the slot. An absent slot is seeded with a fresh default
// document and a corrupt slot is logged and reseeded (the data loss is
// accepted), so Load never fails on bad content.
func (s *LocalStore) Load() (*models.AppDocument, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		doc := models.SeedDocument()
		if err := s.Save(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local state: %w", err)
	}

	doc, decodeErr := models.DecodeDocument(data)
	if decodeErr != nil {
		utils.SafeWarn("local state slot is corrupt, reseeding defaults: %v",
			fmt.Errorf("%w: %v", ErrCorruptLocalState, decodeErr))
		doc = models.SeedDocument()
		if err := s.Save(doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Save overwrites the slot with the normalized document.
func (s *LocalStore) Save(doc *models.AppDocument) error {
	data, err := models.EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode local state: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create local state dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write local state: %w", err)
	}
	return nil
}

// SaveRaw mirrors already-encoded remote bytes into the slot so a later
// failover starts from a recent snapshot. Bytes that do not decode are
// ignored rather than poisoning the slot.
func (s *LocalStore) SaveRaw(data []byte) error {
	doc, err := models.DecodeDocument(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptLocalState, err)
	}
	return s.Save(doc)
}

// Path returns the slot location, mostly for logs.
func (s *LocalStore) Path() string { return s.path }
