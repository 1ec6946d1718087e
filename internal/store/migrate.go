package store

import (
	"encoding/json"

	"github.com/hexahedra/cubik/internal/model"
	"github.com/hexahedra/cubik/internal/stats"
)

// legacyInterval spaces synthetic timestamps for history entries that
// never recorded one.
const legacyInterval = int64(1000)

// legacyDetector recognizes one historical shape of the flat solve
// history and normalizes it to current solve records, newest first.
type legacyDetector func(raw []byte, now int64, newID func() string) ([]model.Solve, bool)

// Detectors run in order; the first match wins. Older shapes come first
// so a bare numeric array is never misread as records.
var legacyDetectors = []legacyDetector{
	detectNumericTimes,
	detectStatelessSolves,
	detectFlatSolves,
}

// migrateLegacy upgrades a legacy flat-history document into a
// single-session snapshot. ok is false when no shape matches.
func migrateLegacy(data string, now int64, newID func() string) (model.Snapshot, bool) {
	raw := []byte(data)
	for _, detect := range legacyDetectors {
		solves, ok := detect(raw, now, newID)
		if !ok {
			continue
		}
		sess := model.Session{
			ID:        newID(),
			Name:      model.DefaultSessionName,
			CreatedAt: now,
			Active:    true,
			Solves:    stats.Recompute(solves),
		}
		return model.Snapshot{
			Sessions:        []model.Session{sess},
			ActiveSessionID: sess.ID,
			LastUpdated:     now,
		}, true
	}
	return model.Snapshot{}, false
}

// detectNumericTimes matches the oldest shape: a bare array of raw
// millisecond times. Timestamps are approximated backward from now.
func detectNumericTimes(raw []byte, now int64, newID func() string) ([]model.Solve, bool) {
	var times []float64
	if err := json.Unmarshal(raw, &times); err != nil {
		return nil, false
	}
	solves := make([]model.Solve, 0, len(times))
	for i, t := range times {
		solves = append(solves, model.Solve{
			ID:         newID(),
			TimeMillis: int64(t),
			Timestamp:  now - int64(i)*legacyInterval,
			Penalty:    model.PenaltyOK,
		})
	}
	return solves, true
}

type legacySolveJSON struct {
	ID             string          `json:"id"`
	Time           int64           `json:"time"`
	Scramble       string          `json:"scramble"`
	Timestamp      int64           `json:"timestamp"`
	State          string          `json:"state"`
	Ao5            json.RawMessage `json:"ao5"`
	Ao12           json.RawMessage `json:"ao12"`
	InspectionTime int             `json:"inspectionTime"`
	PuzzleType     string          `json:"puzzleType"`
}

// detectStatelessSolves matches records predating the state field; the
// missing classification defaults to ok.
func detectStatelessSolves(raw []byte, now int64, newID func() string) ([]model.Solve, bool) {
	records, ok := decodeLegacySolves(raw)
	if !ok {
		return nil, false
	}
	missing := false
	for _, r := range records {
		if r.State == "" {
			missing = true
			break
		}
	}
	if !missing {
		return nil, false
	}
	return normalizeLegacySolves(records, now, newID), true
}

// detectFlatSolves matches the most recent legacy shape: full solve
// records with state, just without the session wrapper.
func detectFlatSolves(raw []byte, now int64, newID func() string) ([]model.Solve, bool) {
	records, ok := decodeLegacySolves(raw)
	if !ok {
		return nil, false
	}
	return normalizeLegacySolves(records, now, newID), true
}

func decodeLegacySolves(raw []byte) ([]legacySolveJSON, bool) {
	var records []legacySolveJSON
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false
	}
	return records, true
}

func normalizeLegacySolves(records []legacySolveJSON, now int64, newID func() string) []model.Solve {
	solves := make([]model.Solve, 0, len(records))
	for i, r := range records {
		id := r.ID
		if id == "" {
			id = newID()
		}
		ts := r.Timestamp
		if ts == 0 {
			ts = now - int64(i)*legacyInterval
		}
		solves = append(solves, model.Solve{
			ID:            id,
			TimeMillis:    r.Time,
			Scramble:      r.Scramble,
			Timestamp:     ts,
			Penalty:       penaltyFromState(r.State),
			InspectionSec: r.InspectionTime,
			Puzzle:        r.PuzzleType,
		})
	}
	return solves
}
