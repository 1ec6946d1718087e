package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/hexahedra/cubik/internal/model"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	SessionName string
	Solves      []model.Solve // newest first, limited by cfg.Last
	TotalSolves int

	BestSingle  model.Average
	CurrentAo5  model.Average
	CurrentAo12 model.Average
	BestAo5     model.Average
	BestAo12    model.Average
	Mean        model.Average

	BestPossibleAo5  model.Average
	WorstPossibleAo5 model.Average
}

// BuildReport prepares data for stats rendering from one session.
func BuildReport(sess model.Session, cfg model.StatsConfig) Report {
	solves := sess.Solves
	limited := solves
	if cfg.Last > 0 && len(limited) > cfg.Last {
		limited = limited[:cfg.Last]
	}
	best5, worst5 := BestWorstPossible(solves, 5)
	return Report{
		SessionName:      sess.Name,
		Solves:           limited,
		TotalSolves:      len(solves),
		BestSingle:       BestSingle(solves),
		CurrentAo5:       CalculateAverage(solves, 5),
		CurrentAo12:      CalculateAverage(solves, 12),
		BestAo5:          BestCached(solves, func(s model.Solve) model.Average { return s.Ao5 }),
		BestAo12:         BestCached(solves, func(s model.Solve) model.Average { return s.Ao12 }),
		Mean:             SessionMean(solves),
		BestPossibleAo5:  best5,
		WorstPossibleAo5: worst5,
	}
}

// RenderSummary prints a summary block for the session.
func RenderSummary(w io.Writer, r Report) error {
	if r.TotalSolves == 0 {
		_, err := fmt.Fprintf(w, "Session %q has no solves yet.\n", r.SessionName)
		return err
	}
	lines := []string{
		fmt.Sprintf("Session: %s", r.SessionName),
		fmt.Sprintf("Solves: %d", r.TotalSolves),
		fmt.Sprintf("Best: %s", FormatAverage(r.BestSingle)),
		fmt.Sprintf("Ao5: %s (best %s)", FormatAverage(r.CurrentAo5), FormatAverage(r.BestAo5)),
		fmt.Sprintf("Ao12: %s (best %s)", FormatAverage(r.CurrentAo12), FormatAverage(r.BestAo12)),
		fmt.Sprintf("Mean: %s", FormatAverage(r.Mean)),
	}
	if r.BestPossibleAo5.Kind != model.AverageNotComputed {
		lines = append(lines, fmt.Sprintf("Ao5 range: %s .. %s",
			FormatAverage(r.BestPossibleAo5), FormatAverage(r.WorstPossibleAo5)))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderHistory prints the solve history table, newest first.
func RenderHistory(w io.Writer, solves []model.Solve) error {
	if len(solves) == 0 {
		_, err := fmt.Fprintln(w, "No solves found.")
		return err
	}
	headers := []string{"#", "Time", "Ao5", "Ao12", "When"}
	rows := make([][]string, 0, len(solves))
	for i, s := range solves {
		rows = append(rows, []string{
			fmt.Sprintf("%d", len(solves)-i),
			FormatSolveTime(s),
			FormatAverage(s.Ao5),
			FormatAverage(s.Ao12),
			time.UnixMilli(s.Timestamp).Format("2006-01-02 15:04"),
		})
	}
	rightAlign := map[int]bool{0: true, 1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderTrend plots effective times oldest to newest with a moving
// average overlay. DNFs are skipped.
func RenderTrend(w io.Writer, solves []model.Solve, window, width, height int) error {
	times := TrendValues(solves)
	if len(times) == 0 {
		return nil
	}
	return PlotSeries(w, "Trend", []Series{
		{Name: "time", Values: times},
		{Name: fmt.Sprintf("avg(%d)", window), Values: MovingAverage(times, window)},
	}, width, height)
}

// TrendValues extracts finite effective times in chronological order.
func TrendValues(solves []model.Solve) []float64 {
	times := make([]float64, 0, len(solves))
	for i := len(solves) - 1; i >= 0; i-- {
		if eff, ok := EffectiveMillis(solves[i]); ok {
			times = append(times, float64(eff))
		}
	}
	return times
}
