// Package model defines shared data structures.
package model

// Penalty classifies a solve after the fact.
type Penalty string

// Penalty values follow WCA terminology.
const (
	PenaltyOK    Penalty = "ok"
	PenaltyPlus2 Penalty = "plus2"
	PenaltyDNF   Penalty = "dnf"
)

// Plus2Millis is the time added to a +2-penalized solve.
const Plus2Millis = 2000

// DefaultPuzzle is assumed when a solve carries no puzzle type.
const DefaultPuzzle = "333"

// DefaultSessionName is the name given to auto-created sessions.
const DefaultSessionName = "Default"

// AverageKind distinguishes the three outcomes of an average computation.
type AverageKind int

const (
	// AverageNotComputed means the window had too few solves.
	AverageNotComputed AverageKind = iota
	// AverageDNF means the window was DNF-dominated.
	AverageDNF
	// AverageValue means a finite mean in milliseconds.
	AverageValue
)

// Average is the result of a rolling or session average.
type Average struct {
	Kind   AverageKind
	Millis float64
}

// NotComputed returns the not-enough-data marker.
func NotComputed() Average {
	return Average{Kind: AverageNotComputed}
}

// DNFAverage returns the DNF marker.
func DNFAverage() Average {
	return Average{Kind: AverageDNF}
}

// AverageOf returns a finite average value.
func AverageOf(millis float64) Average {
	return Average{Kind: AverageValue, Millis: millis}
}

// Computed reports whether the average holds a finite value.
func (a Average) Computed() bool {
	return a.Kind == AverageValue
}

// Solve is one timed attempt. Solves inside a session are kept
// newest-first; index 0 is the most recent.
type Solve struct {
	ID            string
	TimeMillis    int64 // raw clock measurement, pre-penalty
	Scramble      string
	Timestamp     int64 // milliseconds since epoch
	Penalty       Penalty
	Ao5           Average // over this solve and the 4 older ones
	Ao12          Average // over this solve and the 11 older ones
	InspectionSec int     // 0 when inspection was not used
	Puzzle        string  // "" means DefaultPuzzle
}

// PuzzleOrDefault returns the solve's puzzle type, defaulted.
func (s Solve) PuzzleOrDefault() string {
	if s.Puzzle == "" {
		return DefaultPuzzle
	}
	return s.Puzzle
}

// Session is a named, independently tracked group of solves.
type Session struct {
	ID        string
	Name      string
	CreatedAt int64 // milliseconds since epoch
	Active    bool  // mirrors Snapshot.ActiveSessionID
	Solves    []Solve
}

// Snapshot is the persisted root: every session plus the active pointer.
// Mutations produce a wholly new Snapshot; readers never see partial state.
type Snapshot struct {
	Sessions        []Session
	ActiveSessionID string
	LastUpdated     int64 // milliseconds since epoch
}

// ActiveSession returns the session matching the active pointer.
func (s Snapshot) ActiveSession() (Session, bool) {
	for _, sess := range s.Sessions {
		if sess.ID == s.ActiveSessionID {
			return sess, true
		}
	}
	return Session{}, false
}

// Config defines timer settings.
type Config struct {
	Puzzle        string
	Inspection    bool
	ScrambleMoves int // 0 means the per-puzzle default
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Session string // session name; "" means the active session
	Last    int    // limit to the most recent N solves; 0 means all
	Window  int    // moving-average window for the trend plot
	Plain   bool   // print to stdout instead of launching the TUI
}
