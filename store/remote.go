package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/hucha-app/hucha-api/utils"
)

// NotifyChannel is the LISTEN/NOTIFY channel fired by the household_state
// trigger on every committed write.
const NotifyChannel = "household_state_changed"

const maxTxAttempts = 5

// Snapshot is one observation of the remote document slot.
type Snapshot struct {
	Exists bool
	Data   []byte
}

// RemoteStore is the shared document slot in Postgres. It exposes the small
// transactional document API the rest of the app consumes: point reads,
// whole-document writes, serializable read-modify-write transactions, and a
// change watch. Conflicting concurrent transactions are retried in here,
// callers never see serialization failures.
type RemoteStore struct {
	db   *sql.DB
	dsn  string
	slot string
}

func NewRemoteStore(db *sql.DB, dsn, slot string) *RemoteStore {
	return &RemoteStore{db: db, dsn: dsn, slot: slot}
}

// Get reads the current document bytes.
func (s *RemoteStore) Get(ctx context.Context) (Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM household_state WHERE slot = $1`, s.slot).Scan(&data)
	if err == sql.ErrNoRows {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read state slot: %w", err)
	}
	return Snapshot{Exists: true, Data: data}, nil
}

// Set overwrites the document unconditionally.
func (s *RemoteStore) Set(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, upsertQuery, s.slot, data)
	if err != nil {
		return fmt.Errorf("write state slot: %w", err)
	}
	return nil
}

const upsertQuery = `
	INSERT INTO household_state (slot, data, version, updated_at)
	VALUES ($1, $2, 1, NOW())
	ON CONFLICT (slot) DO UPDATE
	SET data = $2, version = household_state.version + 1, updated_at = NOW()
`

// RunTransaction runs fn against the current document inside a serializable
// transaction. fn returns the next document bytes, or nil to commit without
// writing. Serialization conflicts with concurrent writers are retried
// transparently.
func (s *RemoteStore) RunTransaction(ctx context.Context, fn func(current Snapshot) ([]byte, error)) error {
	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if attempt > 0 {
			utils.SafeDebug("retrying state transaction after conflict (attempt %d)", attempt+1)
			time.Sleep(time.Duration(attempt) * 25 * time.Millisecond)
		}
		lastErr = s.runOnce(ctx, fn)
		if lastErr == nil || !isSerializationFailure(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (s *RemoteStore) runOnce(ctx context.Context, fn func(current Snapshot) ([]byte, error)) error {
	return utils.WithSerializableTransaction(ctx, s.db, func(tx *sql.Tx) error {
		var current Snapshot
		var data []byte
		err := tx.QueryRowContext(ctx,
			`SELECT data FROM household_state WHERE slot = $1`, s.slot).Scan(&data)
		switch err {
		case nil:
			current = Snapshot{Exists: true, Data: data}
		case sql.ErrNoRows:
			current = Snapshot{}
		default:
			return fmt.Errorf("read state slot: %w", err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			// No-op mutation: nothing to write, nothing to notify.
			return nil
		}

		if _, err := tx.ExecContext(ctx, upsertQuery, s.slot, next); err != nil {
			return fmt.Errorf("write state slot: %w", err)
		}
		return nil
	})
}

// Watch establishes a standing watch on the document. onNext fires once with
// the current value and then after every committed change; onError receives
// watch-level failures. The returned function cancels the watch.
func (s *RemoteStore) Watch(ctx context.Context, onNext func(Snapshot), onError func(error)) (func(), error) {
	watchCtx, cancel := context.WithCancel(ctx)

	var closed sync.Once
	reportErr := func(err error) {
		select {
		case <-watchCtx.Done():
		default:
			onError(err)
		}
	}

	listener := pq.NewListener(s.dsn, 2*time.Second, time.Minute,
		func(event pq.ListenerEventType, err error) {
			if event == pq.ListenerEventConnectionAttemptFailed && err != nil {
				reportErr(fmt.Errorf("state listener connection: %w", err))
			}
		})
	if err := listener.Listen(NotifyChannel); err != nil {
		listener.Close()
		cancel()
		return nil, fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}

	stop := func() {
		closed.Do(func() {
			cancel()
			listener.Close()
		})
	}

	go func() {
		defer stop()

		// Initial fire, same as a fresh subscription on a document store.
		snap, err := s.Get(watchCtx)
		if err != nil {
			reportErr(err)
			return
		}
		onNext(snap)

		ping := time.NewTicker(90 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case n := <-listener.Notify:
				if n != nil && n.Extra != "" && n.Extra != s.slot {
					continue
				}
				snap, err := s.Get(watchCtx)
				if err != nil {
					reportErr(err)
					return
				}
				onNext(snap)
			case <-ping.C:
				if err := listener.Ping(); err != nil {
					reportErr(fmt.Errorf("state listener ping: %w", err))
					return
				}
			}
		}
	}()

	return stop, nil
}
