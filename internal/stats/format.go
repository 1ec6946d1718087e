package stats

import (
	"fmt"
	"math"

	"github.com/hexahedra/cubik/internal/model"
)

// FormatMillis renders a duration as seconds with centisecond precision,
// switching to m:ss.cc past one minute.
func FormatMillis(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	centis := (ms % 1000) / 10
	secs := ms / 1000
	if secs < 60 {
		return fmt.Sprintf("%d.%02d", secs, centis)
	}
	return fmt.Sprintf("%d:%02d.%02d", secs/60, secs%60, centis)
}

// FormatAverage renders an Average for display: "-" when not computed,
// "DNF" when DNF-dominated, otherwise the rounded time.
func FormatAverage(a model.Average) string {
	switch a.Kind {
	case model.AverageDNF:
		return "DNF"
	case model.AverageValue:
		return FormatMillis(int64(math.Round(a.Millis)))
	default:
		return "-"
	}
}

// FormatSolveTime renders a solve result: DNF as "DNF", +2 with a suffix.
func FormatSolveTime(s model.Solve) string {
	eff, ok := EffectiveMillis(s)
	if !ok {
		return "DNF"
	}
	if s.Penalty == model.PenaltyPlus2 {
		return FormatMillis(eff) + "+"
	}
	return FormatMillis(eff)
}
