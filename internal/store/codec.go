package store

import (
	"encoding/json"
	"strconv"

	"github.com/hexahedra/cubik/internal/model"
)

// The persisted layout keeps the historical field names. Cached averages
// are tri-state on the wire: absent = not computed, null = DNF, number =
// finite milliseconds.
type snapshotJSON struct {
	Sessions        []sessionJSON `json:"sessions"`
	ActiveSessionID string        `json:"activeSessionId"`
	LastUpdated     int64         `json:"lastUpdated"`
}

type sessionJSON struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	CreatedAt int64       `json:"createdAt"`
	IsActive  bool        `json:"isActive"`
	Solves    []solveJSON `json:"solves"`
}

type solveJSON struct {
	ID             string          `json:"id"`
	Time           int64           `json:"time"`
	Scramble       string          `json:"scramble"`
	Timestamp      int64           `json:"timestamp"`
	State          string          `json:"state"`
	Ao5            json.RawMessage `json:"ao5,omitempty"`
	Ao12           json.RawMessage `json:"ao12,omitempty"`
	InspectionTime int             `json:"inspectionTime,omitempty"`
	PuzzleType     string          `json:"puzzleType,omitempty"`
}

// EncodeSnapshot serializes a snapshot to its persisted JSON form.
func EncodeSnapshot(snap model.Snapshot) (string, error) {
	doc := snapshotJSON{
		Sessions:        make([]sessionJSON, 0, len(snap.Sessions)),
		ActiveSessionID: snap.ActiveSessionID,
		LastUpdated:     snap.LastUpdated,
	}
	for _, sess := range snap.Sessions {
		doc.Sessions = append(doc.Sessions, sessionToJSON(sess))
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeSnapshot parses a persisted snapshot document.
func DecodeSnapshot(data string) (model.Snapshot, error) {
	var doc snapshotJSON
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return model.Snapshot{}, err
	}
	snap := model.Snapshot{
		Sessions:        make([]model.Session, 0, len(doc.Sessions)),
		ActiveSessionID: doc.ActiveSessionID,
		LastUpdated:     doc.LastUpdated,
	}
	for _, sess := range doc.Sessions {
		snap.Sessions = append(snap.Sessions, sessionFromJSON(sess))
	}
	return snap, nil
}

func sessionToJSON(sess model.Session) sessionJSON {
	out := sessionJSON{
		ID:        sess.ID,
		Name:      sess.Name,
		CreatedAt: sess.CreatedAt,
		IsActive:  sess.Active,
		Solves:    make([]solveJSON, 0, len(sess.Solves)),
	}
	for _, s := range sess.Solves {
		out.Solves = append(out.Solves, solveJSON{
			ID:             s.ID,
			Time:           s.TimeMillis,
			Scramble:       s.Scramble,
			Timestamp:      s.Timestamp,
			State:          string(s.Penalty),
			Ao5:            averageToRaw(s.Ao5),
			Ao12:           averageToRaw(s.Ao12),
			InspectionTime: s.InspectionSec,
			PuzzleType:     s.Puzzle,
		})
	}
	return out
}

func sessionFromJSON(sess sessionJSON) model.Session {
	out := model.Session{
		ID:        sess.ID,
		Name:      sess.Name,
		CreatedAt: sess.CreatedAt,
		Active:    sess.IsActive,
	}
	if len(sess.Solves) > 0 {
		out.Solves = make([]model.Solve, 0, len(sess.Solves))
	}
	for _, s := range sess.Solves {
		out.Solves = append(out.Solves, model.Solve{
			ID:            s.ID,
			TimeMillis:    s.Time,
			Scramble:      s.Scramble,
			Timestamp:     s.Timestamp,
			Penalty:       penaltyFromState(s.State),
			Ao5:           averageFromRaw(s.Ao5),
			Ao12:          averageFromRaw(s.Ao12),
			InspectionSec: s.InspectionTime,
			Puzzle:        s.PuzzleType,
		})
	}
	return out
}

func penaltyFromState(state string) model.Penalty {
	switch model.Penalty(state) {
	case model.PenaltyPlus2, model.PenaltyDNF:
		return model.Penalty(state)
	default:
		return model.PenaltyOK
	}
}

func averageToRaw(a model.Average) json.RawMessage {
	switch a.Kind {
	case model.AverageDNF:
		return json.RawMessage("null")
	case model.AverageValue:
		return json.RawMessage(strconv.FormatFloat(a.Millis, 'f', -1, 64))
	default:
		return nil
	}
}

func averageFromRaw(raw json.RawMessage) model.Average {
	if len(raw) == 0 {
		return model.NotComputed()
	}
	if string(raw) == "null" {
		return model.DNFAverage()
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return model.NotComputed()
	}
	return model.AverageOf(v)
}
