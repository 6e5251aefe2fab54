package services

import (
	"context"
	"sync"

	"github.com/hucha-app/hucha-api/models"
	"github.com/hucha-app/hucha-api/store"
	"github.com/hucha-app/hucha-api/utils"
)

// Mode says where mutations and reads go.
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

// RemoteDocument is the transactional document API the session consumes.
// store.RemoteStore implements it against Postgres; tests substitute fakes.
type RemoteDocument interface {
	Get(ctx context.Context) (store.Snapshot, error)
	RunTransaction(ctx context.Context, fn func(current store.Snapshot) ([]byte, error)) error
	Watch(ctx context.Context, onNext func(store.Snapshot), onError func(error)) (func(), error)
}

// Session owns the shared document's client-side lifecycle: the current
// persistence mode, the in-memory state mirror, the readiness signal the
// startup sequence awaits, and the one-way remote-to-local fallback. It is
// constructed once in main and passed into handlers; there are no package
// globals.
type Session struct {
	remote  RemoteDocument // nil when credentials are missing or placeholder
	local   *store.LocalStore
	refresh func() // UI refresh signal, fired after every state replacement

	mu    sync.RWMutex
	mode  Mode
	state *models.AppDocument

	// serializes local-mode load-mutate-save cycles (single writer)
	localMu sync.Mutex

	readyOnce sync.Once
	ready     chan struct{}

	fallbackOnce sync.Once
	stopWatch    func()
}

func NewSession(remote RemoteDocument, local *store.LocalStore, refresh func()) *Session {
	if refresh == nil {
		refresh = func() {}
	}
	return &Session{
		remote:  remote,
		local:   local,
		refresh: refresh,
		mode:    ModeRemote,
		ready:   make(chan struct{}),
	}
}

// Start decides the initial mode and brings the session to a usable state:
// remote when credentials exist (bootstrapping the shared document if absent
// and opening the live subscription), local otherwise. Remote setup failures
// convert to local mode instead of failing startup.
func (s *Session) Start(ctx context.Context) {
	if s.remote == nil {
		s.FallbackToLocal("missing or placeholder remote credentials")
		return
	}

	if err := s.bootstrapRemote(ctx); err != nil {
		utils.SafeWarn("remote state initialization failed: %v", err)
		s.FallbackToLocal("remote initialization failure")
		return
	}

	stop, err := s.remote.Watch(ctx, s.handleSnapshot, s.handleWatchError)
	if err != nil {
		utils.SafeWarn("could not open state subscription: %v", err)
		s.FallbackToLocal("subscription failure")
		return
	}

	s.mu.Lock()
	if s.mode == ModeLocal {
		// The watch already failed and fell back before we got here.
		s.mu.Unlock()
		stop()
		return
	}
	s.stopWatch = stop
	s.mu.Unlock()
}

// bootstrapRemote seeds the shared document when it does not exist yet.
func (s *Session) bootstrapRemote(ctx context.Context) error {
	return s.remote.RunTransaction(ctx, func(current store.Snapshot) ([]byte, error) {
		if current.Exists {
			return nil, nil
		}
		return models.EncodeDocument(models.SeedDocument())
	})
}

// Ready is closed once the first state (remote snapshot or local load) is in
// memory.
func (s *Session) Ready() <-chan struct{} { return s.ready }

// WaitReady blocks until initial data is loaded or the context ends.
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// State returns the current document. Installed documents are never mutated
// in place, so the pointer is safe to read; callers that hand data to
// clients go through Sanitized.
func (s *Session) State() *models.AppDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return models.SeedDocument()
	}
	return s.state
}

// setState replaces (never merges) the in-memory state.
func (s *Session) setState(doc *models.AppDocument) {
	s.mu.Lock()
	s.state = doc
	s.mu.Unlock()
}

func (s *Session) signalReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// handleSnapshot is the live-subscription callback: mirror the new value to
// the local slot, replace in-memory state, mark initial data loaded, ask the
// UI to refresh. A not-yet-existing document and duplicate notifications are
// both fine.
func (s *Session) handleSnapshot(snap store.Snapshot) {
	if !snap.Exists {
		return
	}
	doc, err := models.DecodeDocument(snap.Data)
	if err != nil {
		utils.SafeWarn("ignoring undecodable remote state: %v", err)
		return
	}
	if err := s.local.Save(doc); err != nil {
		utils.SafeWarn("could not mirror remote state locally: %v", err)
	}
	s.setState(doc)
	s.signalReady()
	s.refresh()
}

func (s *Session) handleWatchError(err error) {
	utils.SafeError("state subscription failed: %v", err)
	s.FallbackToLocal("subscription error")
}

// FallbackToLocal performs the one-way remote-to-local conversion: cancel
// the subscription, load (seeding if needed) the local document, install it,
// signal readiness. Subsequent calls are no-ops; there is no way back to
// remote within a session.
func (s *Session) FallbackToLocal(reason string) {
	s.fallbackOnce.Do(func() {
		s.mu.Lock()
		s.mode = ModeLocal
		stop := s.stopWatch
		s.stopWatch = nil
		s.mu.Unlock()

		if stop != nil {
			stop()
		}
		utils.SafeInfo("switching to local state (%s), slot: %s", reason, s.local.Path())

		doc, err := s.local.Load()
		if err != nil {
			utils.SafeError("could not load local state, starting from defaults: %v", err)
			doc = models.SeedDocument()
		}
		s.setState(doc)
		s.signalReady()
		s.refresh()
	})
}

// Close cancels any active subscription.
func (s *Session) Close() {
	s.mu.Lock()
	stop := s.stopWatch
	s.stopWatch = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}
