package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hucha-app/hucha-api/models"
)

func TestLocalStore_LoadSeedsWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := NewLocalStore(path)

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Contains(t, doc.Users, "admin")
	assert.Equal(t, models.SeedCategories(), doc.Categories)

	// The slot was written, not just returned
	if _, err := os.Stat(path); err != nil {
		t.Errorf("slot file was not created: %v", err)
	}
}

func TestLocalStore_RoundTrip(t *testing.T) {
	s := NewLocalStore(filepath.Join(t.TempDir(), "state.json"))

	doc, err := s.Load()
	require.NoError(t, err)
	doc.Categories = append(doc.Categories, "Deporte")
	doc.Users["carlota"].Wallet.Balance = 12.5
	require.NoError(t, s.Save(doc))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Contains(t, loaded.Categories, "Deporte")
	assert.Equal(t, 12.5, loaded.Users["carlota"].Wallet.Balance)
}

func TestLocalStore_CorruptSlotReseeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{ definitely not json"), 0o600))

	s := NewLocalStore(path)
	doc, err := s.Load()
	require.NoError(t, err, "corruption is recovered, not surfaced")
	assert.Contains(t, doc.Users, "carlota")
	assert.Equal(t, 1, doc.NextTaskID)

	// And the slot now holds the reseeded document
	again, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, doc.NextTaskID, again.NextTaskID)
}

func TestLocalStore_SaveRawRejectsGarbage(t *testing.T) {
	s := NewLocalStore(filepath.Join(t.TempDir(), "state.json"))
	err := s.SaveRaw([]byte("not json at all"))
	assert.ErrorIs(t, err, ErrCorruptLocalState)
}

func TestLocalStore_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	s := NewLocalStore(path)
	require.NoError(t, s.Save(models.SeedDocument()))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
