// Package scramble builds randomized scramble sequences.
package scramble

import (
	"math/rand"
	"strings"
	"time"

	"github.com/hexahedra/cubik/internal/model"
)

var suffixes = []string{"", "'", "2"}

type moveSet struct {
	faces  []string
	axis   map[string]int
	length int
}

// moveSets keys are puzzle type identifiers; DefaultPuzzle must be
// present.
var moveSets = map[string]moveSet{
	"222": {
		faces:  []string{"U", "R", "F"},
		axis:   map[string]int{"U": 0, "R": 1, "F": 2},
		length: 9,
	},
	model.DefaultPuzzle: {
		faces:  []string{"U", "D", "L", "R", "F", "B"},
		axis:   map[string]int{"U": 0, "D": 0, "L": 1, "R": 1, "F": 2, "B": 2},
		length: 20,
	},
	"444": {
		faces:  []string{"U", "D", "L", "R", "F", "B", "Uw", "Rw", "Fw"},
		axis:   map[string]int{"U": 0, "D": 0, "Uw": 0, "L": 1, "R": 1, "Rw": 1, "F": 2, "B": 2, "Fw": 2},
		length: 40,
	},
}

// Generator produces randomized scrambles.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator for tests.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate builds a scramble for the puzzle type. Unknown puzzles fall
// back to the default set; length <= 0 uses the per-puzzle default.
// Successive moves never repeat a face, and three moves in a row never
// share an axis.
func (g *Generator) Generate(puzzle string, length int) string {
	set, ok := moveSets[puzzle]
	if !ok {
		set = moveSets[model.DefaultPuzzle]
	}
	if length <= 0 {
		length = set.length
	}
	moves := make([]string, 0, length)
	prevFace := ""
	prevPrevFace := ""
	for len(moves) < length {
		face := set.faces[g.rnd.Intn(len(set.faces))]
		if face == prevFace {
			continue
		}
		if prevFace != "" && prevPrevFace != "" &&
			set.axis[face] == set.axis[prevFace] && set.axis[face] == set.axis[prevPrevFace] {
			continue
		}
		moves = append(moves, face+suffixes[g.rnd.Intn(len(suffixes))])
		prevPrevFace = prevFace
		prevFace = face
	}
	return strings.Join(moves, " ")
}

// Navigator keeps a scramble history so the UI can revisit earlier
// scrambles and move forward again.
type Navigator struct {
	gen     *Generator
	puzzle  string
	length  int
	history []string
	pos     int
}

// NewNavigator returns a Navigator positioned on a fresh scramble.
func NewNavigator(gen *Generator, puzzle string, length int) *Navigator {
	n := &Navigator{gen: gen, puzzle: puzzle, length: length}
	n.history = append(n.history, gen.Generate(puzzle, length))
	return n
}

// Current returns the scramble under the cursor.
func (n *Navigator) Current() string {
	return n.history[n.pos]
}

// Next advances to the following scramble, generating one at the end of
// the history.
func (n *Navigator) Next() string {
	n.pos++
	if n.pos == len(n.history) {
		n.history = append(n.history, n.gen.Generate(n.puzzle, n.length))
	}
	return n.history[n.pos]
}

// Prev steps back; the oldest scramble is a floor.
func (n *Navigator) Prev() string {
	if n.pos > 0 {
		n.pos--
	}
	return n.history[n.pos]
}
