package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Trend", []Series{
		{Name: "time", Values: []float64{10000, 12000, 11000, 9000}},
		{Name: "avg", Values: []float64{10000, 11000, 11000, 10600}},
	}, 20, 4)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Trend") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	if !strings.Contains(out, "12.00") {
		t.Fatalf("expected max axis label in output: %s", out)
	}
	if !strings.Contains(out, "9.00") {
		t.Fatalf("expected min axis label in output: %s", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// Title, 4 plot rows, legend.
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines of output, got %d: %s", len(lines), out)
	}
}

func TestPlotSeriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Trend", nil, 20, 4); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty series, got %q", buf.String())
	}
}

func TestResample(t *testing.T) {
	down := resample([]float64{1, 2, 3, 4}, 2)
	if len(down) != 2 || down[0] != 1.5 || down[1] != 3.5 {
		t.Fatalf("unexpected downsample: %v", down)
	}
	up := resample([]float64{1, 3}, 3)
	if len(up) != 3 || up[0] != 1 || up[1] != 2 || up[2] != 3 {
		t.Fatalf("unexpected upsample: %v", up)
	}
}
