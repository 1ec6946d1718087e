package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/hexahedra/cubik/internal/model"
	"github.com/hexahedra/cubik/internal/storage"
)

func openTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	medium := storage.NewMemory()
	st, err := Open(context.Background(), medium)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st, medium
}

func addTimes(t *testing.T, st *Store, times ...int64) {
	t.Helper()
	for _, ms := range times {
		err := st.AddSolve(context.Background(), model.Solve{
			TimeMillis: ms,
			Scramble:   "R U R' U'",
			Timestamp:  time.Now().UnixMilli(),
			Penalty:    model.PenaltyOK,
		})
		if err != nil {
			t.Fatalf("add solve: %v", err)
		}
	}
}

func assertOneActive(t *testing.T, st *Store) {
	t.Helper()
	snap := st.Snapshot()
	active := 0
	for _, sess := range snap.Sessions {
		if sess.Active {
			active++
			if sess.ID != snap.ActiveSessionID {
				t.Fatalf("active flag on %q disagrees with pointer %q", sess.ID, snap.ActiveSessionID)
			}
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active session, got %d", active)
	}
}

func TestOpenSeedsDefault(t *testing.T) {
	st, medium := openTestStore(t)
	sessions := st.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions))
	}
	if sessions[0].Name != model.DefaultSessionName || !sessions[0].Active {
		t.Fatalf("unexpected default session: %+v", sessions[0])
	}
	assertOneActive(t, st)
	if _, ok, err := medium.Get(context.Background(), snapshotKey); err != nil || !ok {
		t.Fatalf("expected seeded snapshot to be persisted (ok=%v err=%v)", ok, err)
	}
}

func TestOpenReadsExistingSnapshot(t *testing.T) {
	st, medium := openTestStore(t)
	addTimes(t, st, 10000, 20000)
	want := st.Snapshot()

	st2, err := Open(context.Background(), medium)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if !reflect.DeepEqual(want, st2.Snapshot()) {
		t.Fatalf("snapshot changed across reopen:\nwant %+v\ngot  %+v", want, st2.Snapshot())
	}
}

func TestOpenMalformedFallsBackToLegacy(t *testing.T) {
	ctx := context.Background()
	medium := storage.NewMemory()
	if err := medium.Set(ctx, snapshotKey, "{broken"); err != nil {
		t.Fatalf("seed primary: %v", err)
	}
	if err := medium.Set(ctx, legacyKey, `[5000, 6000]`); err != nil {
		t.Fatalf("seed legacy: %v", err)
	}
	st, err := Open(ctx, medium)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	sess, ok := st.ActiveSession()
	if !ok || len(sess.Solves) != 2 {
		t.Fatalf("expected migrated session with 2 solves, got %+v", sess)
	}
	// Legacy data is read only as a fallback, never deleted.
	if _, ok, _ := medium.Get(ctx, legacyKey); !ok {
		t.Fatalf("legacy document must survive migration")
	}
}

func TestOpenMigrationIsOneDirectional(t *testing.T) {
	ctx := context.Background()
	medium := storage.NewMemory()
	if err := medium.Set(ctx, legacyKey, `[5000, 6000]`); err != nil {
		t.Fatalf("seed legacy: %v", err)
	}
	st, err := Open(ctx, medium)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	addTimes(t, st, 7000)

	// A changed legacy document is ignored once the new format exists.
	if err := medium.Set(ctx, legacyKey, `[1, 2, 3]`); err != nil {
		t.Fatalf("mutate legacy: %v", err)
	}
	st2, err := Open(ctx, medium)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	sess, _ := st2.ActiveSession()
	if len(sess.Solves) != 3 {
		t.Fatalf("expected 3 solves from primary document, got %d", len(sess.Solves))
	}
}

func TestCreateSession(t *testing.T) {
	st, _ := openTestStore(t)
	if err := st.CreateSession(context.Background(), "OH practice"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	sessions := st.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[1].Name != "OH practice" || sessions[1].Active {
		t.Fatalf("new session must be inactive: %+v", sessions[1])
	}
	assertOneActive(t, st)
}

func TestCreateSessionBlankNameNoOp(t *testing.T) {
	st, _ := openTestStore(t)
	if err := st.CreateSession(context.Background(), "   "); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(st.Sessions()) != 1 {
		t.Fatalf("blank name must not create a session")
	}
}

func TestSwitchSession(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()
	if err := st.CreateSession(ctx, "Second"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	target := st.Sessions()[1].ID
	if err := st.SwitchSession(ctx, target); err != nil {
		t.Fatalf("switch session: %v", err)
	}
	if st.ActiveSessionID() != target {
		t.Fatalf("pointer not moved to %q", target)
	}
	assertOneActive(t, st)
}

func TestSwitchSessionUnknownID(t *testing.T) {
	st, _ := openTestStore(t)
	before := st.ActiveSessionID()
	err := st.SwitchSession(context.Background(), "no-such-id")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if st.ActiveSessionID() != before {
		t.Fatalf("pointer must not move on unknown id")
	}
}

func TestDeleteActiveSessionReassigns(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()
	if err := st.CreateSession(ctx, "Second"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	active := st.ActiveSessionID()
	if err := st.DeleteSession(ctx, active); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	sessions := st.Sessions()
	if len(sessions) != 1 || sessions[0].Name != "Second" {
		t.Fatalf("unexpected sessions after delete: %+v", sessions)
	}
	if st.ActiveSessionID() != sessions[0].ID {
		t.Fatalf("pointer must move to the first remaining session")
	}
	assertOneActive(t, st)
}

func TestDeleteLastSessionReseeds(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()
	addTimes(t, st, 10000)
	old := st.ActiveSessionID()
	if err := st.DeleteSession(ctx, old); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	sessions := st.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("store must never be empty, got %d sessions", len(sessions))
	}
	fresh := sessions[0]
	if fresh.ID == old || fresh.Name != model.DefaultSessionName || len(fresh.Solves) != 0 {
		t.Fatalf("expected a fresh default session, got %+v", fresh)
	}
	assertOneActive(t, st)
}

func TestDeleteSessionUnknownIDNoOp(t *testing.T) {
	st, _ := openTestStore(t)
	if err := st.DeleteSession(context.Background(), "no-such-id"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if len(st.Sessions()) != 1 {
		t.Fatalf("unknown id must not change sessions")
	}
}

func TestRenameSession(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()
	id := st.ActiveSessionID()
	if err := st.RenameSession(ctx, id, "Weekly comp"); err != nil {
		t.Fatalf("rename session: %v", err)
	}
	if st.Sessions()[0].Name != "Weekly comp" {
		t.Fatalf("rename not applied: %+v", st.Sessions()[0])
	}
	if err := st.RenameSession(ctx, id, "  "); err != nil {
		t.Fatalf("rename session: %v", err)
	}
	if st.Sessions()[0].Name != "Weekly comp" {
		t.Fatalf("blank rename must be a no-op")
	}
}

func TestAddSolveRecomputesWholeSession(t *testing.T) {
	st, _ := openTestStore(t)
	addTimes(t, st, 10, 20, 30, 40, 50)
	sess, _ := st.ActiveSession()
	if len(sess.Solves) != 5 {
		t.Fatalf("expected 5 solves, got %d", len(sess.Solves))
	}
	// Newest-first: index 0 holds the last appended time.
	if sess.Solves[0].TimeMillis != 50 {
		t.Fatalf("expected newest solve first, got %+v", sess.Solves[0])
	}
	if !sess.Solves[0].Ao5.Computed() || sess.Solves[0].Ao5.Millis != 30 {
		t.Fatalf("expected ao5 of 30 on newest solve, got %+v", sess.Solves[0].Ao5)
	}
	if sess.Solves[1].Ao5.Kind != model.AverageNotComputed {
		t.Fatalf("expected not-computed ao5 below the window, got %+v", sess.Solves[1].Ao5)
	}
}

func TestUpdateSolveReclassifyAffectsNeighbors(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()
	addTimes(t, st, 10, 20, 30, 40, 50)
	sess, _ := st.ActiveSession()
	oldest := sess.Solves[4]

	dnf := model.PenaltyDNF
	if err := st.UpdateSolve(ctx, oldest.ID, SolvePatch{Penalty: &dnf}); err != nil {
		t.Fatalf("update solve: %v", err)
	}
	sess, _ = st.ActiveSession()
	if sess.Solves[4].Penalty != model.PenaltyDNF {
		t.Fatalf("penalty not applied: %+v", sess.Solves[4])
	}
	// The newest record's cached ao5 shifts because its window lost the 10.
	if !sess.Solves[0].Ao5.Computed() || sess.Solves[0].Ao5.Millis != 40 {
		t.Fatalf("expected neighbor ao5 of 40, got %+v", sess.Solves[0].Ao5)
	}
	// Immutable fields stay put.
	if sess.Solves[4].TimeMillis != oldest.TimeMillis || sess.Solves[4].Timestamp != oldest.Timestamp {
		t.Fatalf("immutable fields changed: %+v", sess.Solves[4])
	}
}

func TestUpdateSolveUnknownIDNoOp(t *testing.T) {
	st, _ := openTestStore(t)
	addTimes(t, st, 10000)
	dnf := model.PenaltyDNF
	if err := st.UpdateSolve(context.Background(), "no-such-solve", SolvePatch{Penalty: &dnf}); err != nil {
		t.Fatalf("update solve: %v", err)
	}
	sess, _ := st.ActiveSession()
	if sess.Solves[0].Penalty != model.PenaltyOK {
		t.Fatalf("unknown id must not change solves")
	}
}

func TestDeleteSolveRecomputes(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()
	addTimes(t, st, 10, 20, 30, 40, 50, 60)
	sess, _ := st.ActiveSession()
	if !sess.Solves[0].Ao5.Computed() {
		t.Fatalf("precondition: newest solve needs a computed ao5")
	}
	if err := st.DeleteSolve(ctx, sess.Solves[5].ID); err != nil {
		t.Fatalf("delete solve: %v", err)
	}
	sess, _ = st.ActiveSession()
	if len(sess.Solves) != 5 {
		t.Fatalf("expected 5 solves, got %d", len(sess.Solves))
	}
	// Window is [60,50,40,30,20] now; trimmed mean is 40.
	if !sess.Solves[0].Ao5.Computed() || sess.Solves[0].Ao5.Millis != 40 {
		t.Fatalf("expected recomputed ao5 of 40, got %+v", sess.Solves[0].Ao5)
	}
}

func TestClearActiveSession(t *testing.T) {
	st, _ := openTestStore(t)
	addTimes(t, st, 10000, 20000)
	if err := st.ClearActiveSession(context.Background()); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	sess, _ := st.ActiveSession()
	if len(sess.Solves) != 0 {
		t.Fatalf("expected empty session, got %d solves", len(sess.Solves))
	}
}

func TestImportTimes(t *testing.T) {
	st, _ := openTestStore(t)
	if err := st.ImportTimes(context.Background(), []int64{5000, 6000, 7000, 8000, 9000}); err != nil {
		t.Fatalf("import times: %v", err)
	}
	sess, _ := st.ActiveSession()
	if len(sess.Solves) != 5 {
		t.Fatalf("expected 5 solves, got %d", len(sess.Solves))
	}
	for i, s := range sess.Solves {
		if s.Penalty != model.PenaltyOK || s.Scramble != "imported" {
			t.Fatalf("solve %d: unexpected synthesized fields: %+v", i, s)
		}
		if i > 0 && sess.Solves[i-1].Timestamp <= s.Timestamp {
			t.Fatalf("timestamps must strictly decrease: %d then %d",
				sess.Solves[i-1].Timestamp, s.Timestamp)
		}
	}
	// Import runs the normal recompute path.
	if !sess.Solves[0].Ao5.Computed() || sess.Solves[0].Ao5.Millis != 7000 {
		t.Fatalf("expected ao5 of 7000, got %+v", sess.Solves[0].Ao5)
	}
}

func TestMutationsPersistFullSnapshot(t *testing.T) {
	st, medium := openTestStore(t)
	addTimes(t, st, 10000)
	doc, ok, err := medium.Get(context.Background(), snapshotKey)
	if err != nil || !ok {
		t.Fatalf("expected persisted snapshot (ok=%v err=%v)", ok, err)
	}
	persisted, err := DecodeSnapshot(doc)
	if err != nil {
		t.Fatalf("decode persisted snapshot: %v", err)
	}
	if !reflect.DeepEqual(persisted, st.Snapshot()) {
		t.Fatalf("persisted snapshot diverges from memory:\nwant %+v\ngot  %+v", st.Snapshot(), persisted)
	}
}
