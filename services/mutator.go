package services

import (
	"context"
	"fmt"

	"github.com/hucha-app/hucha-api/models"
	"github.com/hucha-app/hucha-api/store"
	"github.com/hucha-app/hucha-api/utils"
)

// Mutator is the unit of atomic change: it receives a private copy of the
// current normalized document, edits it in place, and reports whether
// anything changed. changed=false commits nothing and notifies nobody. An
// error aborts the whole transaction with no partial write.
type Mutator func(doc *models.AppDocument) (changed bool, err error)

// ApplyMutation applies m atomically against the authoritative document.
// In remote mode the read-mutate-write runs inside a serializable store
// transaction and the updated document flows back through the live
// subscription. In local mode it is a serialized load-mutate-save against
// the fallback slot, applied to in-memory state directly. A remote failure
// classified as retryable flips the session to local mode and retries the
// same mutation there exactly once; validation and not-found errors surface
// as-is.
func (s *Session) ApplyMutation(ctx context.Context, name string, m Mutator) error {
	if s.Mode() == ModeRemote {
		err := s.applyRemote(ctx, m)
		if err == nil {
			utils.SafeDebug("mutation %s applied remotely", name)
			return nil
		}
		if !store.RetryableAsFallback(err) {
			return err
		}
		utils.SafeWarn("mutation %s failed against remote state (%v), retrying locally", name, err)
		s.FallbackToLocal("transaction failure")
	}

	if err := s.applyLocal(m); err != nil {
		return err
	}
	utils.SafeDebug("mutation %s applied locally", name)
	return nil
}

func (s *Session) applyRemote(ctx context.Context, m Mutator) error {
	return s.remote.RunTransaction(ctx, func(current store.Snapshot) ([]byte, error) {
		var doc *models.AppDocument
		if current.Exists {
			decoded, err := models.DecodeDocument(current.Data)
			if err != nil {
				// JSONB guarantees well-formed JSON; anything else is
				// unrecoverable garbage, start over from defaults.
				utils.SafeWarn("remote state undecodable inside transaction, reseeding: %v", err)
				decoded = models.SeedDocument()
			}
			doc = decoded
		} else {
			doc = models.SeedDocument()
		}

		changed, err := m(doc)
		if err != nil {
			return nil, err
		}
		if !changed && current.Exists {
			return nil, nil
		}
		return models.EncodeDocument(doc)
	})
}

func (s *Session) applyLocal(m Mutator) error {
	s.localMu.Lock()
	defer s.localMu.Unlock()

	doc, err := s.local.Load()
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}

	changed, err := m(doc)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	models.Normalize(doc)
	if err := s.local.Save(doc); err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}

	// No push channel in local mode: apply and refresh directly.
	s.setState(doc)
	s.signalReady()
	s.refresh()
	return nil
}
