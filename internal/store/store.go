// Package store owns the durable collection of named solve sessions.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hexahedra/cubik/internal/model"
	"github.com/hexahedra/cubik/internal/stats"
	"github.com/hexahedra/cubik/internal/storage"
)

// Document keys in the storage medium. The legacy key is read only as a
// fallback and never deleted.
const (
	snapshotKey = "session_store"
	legacyKey   = "solve_history"
)

// ErrSessionNotFound is returned when switching to an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Store is the session store. All mutations run to completion, replace
// the in-memory snapshot wholesale, and persist the full document before
// returning. Referential misses other than SwitchSession are silent
// no-ops.
type Store struct {
	storage storage.Store
	snap    model.Snapshot

	now   func() time.Time
	newID func() string
}

// Open loads the snapshot from storage, migrating legacy history or
// seeding a default session when no usable document exists. Malformed
// documents are treated as absent.
func Open(ctx context.Context, st storage.Store) (*Store, error) {
	s := &Store{
		storage: st,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	doc, ok, err := s.storage.Get(ctx, snapshotKey)
	if err != nil {
		return fmt.Errorf("failed to read session store: %w", err)
	}
	if ok {
		snap, derr := DecodeSnapshot(doc)
		if derr == nil {
			s.snap = normalize(snap, s.nowMillis(), s.newID)
			return nil
		}
		// Malformed primary document: fall through to migration.
	}

	legacy, ok, err := s.storage.Get(ctx, legacyKey)
	if err != nil {
		return fmt.Errorf("failed to read legacy history: %w", err)
	}
	if ok {
		if snap, matched := migrateLegacy(legacy, s.nowMillis(), s.newID); matched {
			s.snap = snap
			return s.persist(ctx)
		}
	}

	s.snap = s.seedDefault()
	return s.persist(ctx)
}

func (s *Store) seedDefault() model.Snapshot {
	now := s.nowMillis()
	sess := model.Session{
		ID:        s.newID(),
		Name:      model.DefaultSessionName,
		CreatedAt: now,
		Active:    true,
	}
	return model.Snapshot{
		Sessions:        []model.Session{sess},
		ActiveSessionID: sess.ID,
		LastUpdated:     now,
	}
}

// normalize repairs invariants on load: at least one session exists and
// the active pointer references exactly one of them.
func normalize(snap model.Snapshot, now int64, newID func() string) model.Snapshot {
	if len(snap.Sessions) == 0 {
		sess := model.Session{
			ID:        newID(),
			Name:      model.DefaultSessionName,
			CreatedAt: now,
			Active:    true,
		}
		return model.Snapshot{
			Sessions:        []model.Session{sess},
			ActiveSessionID: sess.ID,
			LastUpdated:     now,
		}
	}
	if _, ok := snap.ActiveSession(); !ok {
		snap.ActiveSessionID = snap.Sessions[0].ID
	}
	return withActiveFlags(snap)
}

// Snapshot returns the current immutable snapshot. Mutations never touch
// a returned snapshot's slices, so readers stay consistent mid-update.
func (s *Store) Snapshot() model.Snapshot {
	return s.snap
}

// Sessions returns every session, in stored order.
func (s *Store) Sessions() []model.Session {
	return s.snap.Sessions
}

// ActiveSessionID returns the active pointer.
func (s *Store) ActiveSessionID() string {
	return s.snap.ActiveSessionID
}

// ActiveSession returns the active session; ok is false only if the
// store invariant is broken.
func (s *Store) ActiveSession() (model.Session, bool) {
	return s.snap.ActiveSession()
}

// CreateSession appends a new empty, inactive session. Blank names are a
// silent no-op.
func (s *Store) CreateSession(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	sess := model.Session{
		ID:        s.newID(),
		Name:      name,
		CreatedAt: s.nowMillis(),
	}
	next := s.snap
	next.Sessions = append(copySessions(next.Sessions), sess)
	return s.commit(ctx, next)
}

// SwitchSession moves the active pointer. Unknown ids are rejected and
// leave the pointer untouched.
func (s *Store) SwitchSession(ctx context.Context, sessionID string) error {
	found := false
	for _, sess := range s.snap.Sessions {
		if sess.ID == sessionID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("switch to %q: %w", sessionID, ErrSessionNotFound)
	}
	next := s.snap
	next.ActiveSessionID = sessionID
	return s.commit(ctx, withActiveFlags(next))
}

// DeleteSession removes a session; deleting the active session hands the
// pointer to the first remaining one, and deleting the last session
// replaces the store with a fresh default. Unknown ids are a no-op.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	remaining := make([]model.Session, 0, len(s.snap.Sessions))
	found := false
	for _, sess := range s.snap.Sessions {
		if sess.ID == sessionID {
			found = true
			continue
		}
		remaining = append(remaining, sess)
	}
	if !found {
		return nil
	}
	if len(remaining) == 0 {
		return s.commit(ctx, s.seedDefault())
	}
	next := s.snap
	next.Sessions = remaining
	if next.ActiveSessionID == sessionID {
		next.ActiveSessionID = remaining[0].ID
	}
	return s.commit(ctx, withActiveFlags(next))
}

// RenameSession renames in place. Unknown ids and blank names are
// silent no-ops; names need not be unique.
func (s *Store) RenameSession(ctx context.Context, sessionID, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return nil
	}
	next, changed := s.updateSession(sessionID, func(sess model.Session) model.Session {
		sess.Name = newName
		return sess
	})
	if !changed {
		return nil
	}
	return s.commit(ctx, next)
}

// AddSolve prepends a solve to the active session and recomputes every
// cached average in it.
func (s *Store) AddSolve(ctx context.Context, solve model.Solve) error {
	if solve.ID == "" {
		solve.ID = s.newID()
	}
	next, changed := s.updateSession(s.snap.ActiveSessionID, func(sess model.Session) model.Session {
		solves := make([]model.Solve, 0, len(sess.Solves)+1)
		solves = append(solves, solve)
		solves = append(solves, sess.Solves...)
		sess.Solves = stats.Recompute(solves)
		return sess
	})
	if !changed {
		return nil
	}
	return s.commit(ctx, next)
}

// SolvePatch holds the post-hoc mutable solve fields. Nil fields are
// left unchanged; time, scramble, and timestamp are immutable.
type SolvePatch struct {
	Penalty *model.Penalty
}

// UpdateSolve merges a patch into the matching solve of the active
// session, then recomputes every cached average. Unknown ids are a
// silent no-op.
func (s *Store) UpdateSolve(ctx context.Context, solveID string, patch SolvePatch) error {
	matched := false
	next, changed := s.updateSession(s.snap.ActiveSessionID, func(sess model.Session) model.Session {
		solves := make([]model.Solve, len(sess.Solves))
		copy(solves, sess.Solves)
		for i := range solves {
			if solves[i].ID != solveID {
				continue
			}
			matched = true
			if patch.Penalty != nil {
				solves[i].Penalty = *patch.Penalty
			}
			break
		}
		sess.Solves = stats.Recompute(solves)
		return sess
	})
	if !changed || !matched {
		return nil
	}
	return s.commit(ctx, next)
}

// DeleteSolve removes a solve from the active session and recomputes.
// Unknown ids are a silent no-op.
func (s *Store) DeleteSolve(ctx context.Context, solveID string) error {
	matched := false
	next, changed := s.updateSession(s.snap.ActiveSessionID, func(sess model.Session) model.Session {
		solves := make([]model.Solve, 0, len(sess.Solves))
		for _, sv := range sess.Solves {
			if sv.ID == solveID {
				matched = true
				continue
			}
			solves = append(solves, sv)
		}
		sess.Solves = stats.Recompute(solves)
		return sess
	})
	if !changed || !matched {
		return nil
	}
	return s.commit(ctx, next)
}

// ClearActiveSession empties the active session's solve list.
func (s *Store) ClearActiveSession(ctx context.Context) error {
	next, changed := s.updateSession(s.snap.ActiveSessionID, func(sess model.Session) model.Session {
		sess.Solves = nil
		return sess
	})
	if !changed {
		return nil
	}
	return s.commit(ctx, next)
}

// ImportTimes synthesizes ok solves from raw millisecond durations and
// prepends them to the active session in one batch. Timestamps descend
// one second apart from now; the scramble is a placeholder.
func (s *Store) ImportTimes(ctx context.Context, times []int64) error {
	if len(times) == 0 {
		return nil
	}
	now := s.nowMillis()
	imported := make([]model.Solve, 0, len(times))
	for i, t := range times {
		imported = append(imported, model.Solve{
			ID:         s.newID(),
			TimeMillis: t,
			Scramble:   "imported",
			Timestamp:  now - int64(i)*1000,
			Penalty:    model.PenaltyOK,
		})
	}
	next, changed := s.updateSession(s.snap.ActiveSessionID, func(sess model.Session) model.Session {
		solves := make([]model.Solve, 0, len(imported)+len(sess.Solves))
		solves = append(solves, imported...)
		solves = append(solves, sess.Solves...)
		sess.Solves = stats.Recompute(solves)
		return sess
	})
	if !changed {
		return nil
	}
	return s.commit(ctx, next)
}

// updateSession rebuilds the session list with fn applied to the session
// matching id. changed is false when the id matched nothing.
func (s *Store) updateSession(id string, fn func(model.Session) model.Session) (model.Snapshot, bool) {
	next := s.snap
	sessions := copySessions(next.Sessions)
	changed := false
	for i := range sessions {
		if sessions[i].ID != id {
			continue
		}
		sessions[i] = fn(sessions[i])
		changed = true
		break
	}
	next.Sessions = sessions
	return next, changed
}

func (s *Store) commit(ctx context.Context, next model.Snapshot) error {
	next.LastUpdated = s.nowMillis()
	s.snap = next
	return s.persist(ctx)
}

func (s *Store) persist(ctx context.Context) error {
	doc, err := EncodeSnapshot(s.snap)
	if err != nil {
		return fmt.Errorf("failed to encode session store: %w", err)
	}
	if err := s.storage.Set(ctx, snapshotKey, doc); err != nil {
		return fmt.Errorf("failed to persist session store: %w", err)
	}
	return nil
}

func (s *Store) nowMillis() int64 {
	return s.now().UnixMilli()
}

// withActiveFlags syncs every session's Active flag with the pointer.
func withActiveFlags(snap model.Snapshot) model.Snapshot {
	sessions := copySessions(snap.Sessions)
	for i := range sessions {
		sessions[i].Active = sessions[i].ID == snap.ActiveSessionID
	}
	snap.Sessions = sessions
	return snap
}

func copySessions(sessions []model.Session) []model.Session {
	out := make([]model.Session, len(sessions))
	copy(out, sessions)
	return out
}
