// Package stats contains solve statistics calculations and reporting.
package stats

import (
	"math"
	"sort"

	"github.com/hexahedra/cubik/internal/model"
)

// dnfSentinel sorts worse than every finite effective time.
var dnfSentinel = math.Inf(1)

// EffectiveMillis returns the penalized time used for ranking and
// averaging. ok is false for a DNF, which is slower than any finite time.
func EffectiveMillis(s model.Solve) (int64, bool) {
	switch s.Penalty {
	case model.PenaltyPlus2:
		return s.TimeMillis + model.Plus2Millis, true
	case model.PenaltyDNF:
		return 0, false
	default:
		return s.TimeMillis, true
	}
}

// CalculateAverage computes the trimmed rolling average over the count
// most recent solves (the prefix, since solves are newest-first). The
// fastest and slowest entries are discarded; two or more DNFs make the
// whole average a DNF. The function is total and never panics on short
// input.
func CalculateAverage(solves []model.Solve, count int) model.Average {
	if count < 3 || len(solves) < count {
		return model.NotComputed()
	}
	window := solves[:count]
	values, dnfs := effectiveValues(window)
	if dnfs >= 2 {
		return model.DNFAverage()
	}
	sort.Float64s(values)
	// The at-most-one DNF sorts last and lands in the discarded slot.
	trimmed := values[1 : len(values)-1]
	return model.AverageOf(mean(trimmed))
}

// BestWorstPossible bounds the range the current average can move within
// as the window ages. Best discards the two slowest entries, worst the
// two fastest. A DNF surviving the worst-case trim makes the worst case
// a DNF.
func BestWorstPossible(solves []model.Solve, count int) (best, worst model.Average) {
	if count < 4 || len(solves) < count {
		return model.NotComputed(), model.NotComputed()
	}
	values, dnfs := effectiveValues(solves[:count])
	if dnfs >= 2 {
		return model.DNFAverage(), model.DNFAverage()
	}
	sort.Float64s(values)

	bestVals := values[:len(values)-2]
	if len(bestVals) < 2 {
		best = model.NotComputed()
	} else {
		best = model.AverageOf(mean(bestVals))
	}

	worstVals := values[2:]
	if len(worstVals) < 2 {
		worst = model.NotComputed()
	} else if math.IsInf(worstVals[len(worstVals)-1], 1) {
		worst = model.DNFAverage()
	} else {
		worst = model.AverageOf(mean(worstVals))
	}
	return best, worst
}

// SessionMean is the untrimmed arithmetic mean over all non-DNF solves.
// DNFs are excluded from both sum and count, unlike the rolling average
// rule. Zero non-DNF solves yield NotComputed.
func SessionMean(solves []model.Solve) model.Average {
	var sum float64
	var n int
	for _, s := range solves {
		if eff, ok := EffectiveMillis(s); ok {
			sum += float64(eff)
			n++
		}
	}
	if n == 0 {
		return model.NotComputed()
	}
	return model.AverageOf(sum / float64(n))
}

// BestSingle returns the fastest non-DNF effective time.
func BestSingle(solves []model.Solve) model.Average {
	best := model.NotComputed()
	for _, s := range solves {
		eff, ok := EffectiveMillis(s)
		if !ok {
			continue
		}
		if !best.Computed() || float64(eff) < best.Millis {
			best = model.AverageOf(float64(eff))
		}
	}
	return best
}

// BestCached returns the best finite value among the cached averages
// selected by pick (typically Ao5 or Ao12).
func BestCached(solves []model.Solve, pick func(model.Solve) model.Average) model.Average {
	best := model.NotComputed()
	for _, s := range solves {
		a := pick(s)
		if !a.Computed() {
			continue
		}
		if !best.Computed() || a.Millis < best.Millis {
			best = a
		}
	}
	return best
}

// Recompute fills the cached Ao5/Ao12 of every solve from scratch and
// returns a new slice; the input is not modified. The record at index i
// is averaged with the count-1 chronologically older records at i+1 and
// beyond.
func Recompute(solves []model.Solve) []model.Solve {
	out := make([]model.Solve, len(solves))
	copy(out, solves)
	for i := range out {
		out[i].Ao5 = CalculateAverage(out[i:], 5)
		out[i].Ao12 = CalculateAverage(out[i:], 12)
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

func effectiveValues(window []model.Solve) (values []float64, dnfs int) {
	values = make([]float64, 0, len(window))
	for _, s := range window {
		eff, ok := EffectiveMillis(s)
		if !ok {
			dnfs++
			values = append(values, dnfSentinel)
			continue
		}
		values = append(values, float64(eff))
	}
	return values, dnfs
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
