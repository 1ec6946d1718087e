// Package importer parses external time exports into raw durations.
package importer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadTimes reads an export file and returns raw millisecond durations,
// newest first as exported. JSON arrays and line-based text are both
// accepted.
func LoadTimes(path string) ([]int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only export.
			_ = cerr
		}
	}()
	return ParseTimes(file)
}

// ParseTimes parses an export stream. A stream starting with '[' is
// treated as a JSON array of numbers; anything else as one duration per
// line. Durations under 1000 are read as seconds, larger values as
// milliseconds.
func ParseTimes(r io.Reader) ([]int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("export is empty")
	}
	if strings.HasPrefix(trimmed, "[") {
		return parseJSONTimes(trimmed)
	}
	return parseTextTimes(trimmed)
}

func parseJSONTimes(data string) ([]int64, error) {
	var values []float64
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("failed to parse JSON export: %w", err)
	}
	times := make([]int64, 0, len(values))
	for _, v := range values {
		times = append(times, normalizeMillis(v))
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("export is empty")
	}
	return times, nil
}

func parseTextTimes(data string) ([]int64, error) {
	var times []int64
	scanner := bufio.NewScanner(strings.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", line, err)
		}
		times = append(times, normalizeMillis(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("export is empty")
	}
	return times, nil
}

// normalizeMillis treats small values as seconds (a "12.34" text export)
// and everything else as milliseconds.
func normalizeMillis(v float64) int64 {
	if v < 1000 {
		return int64(v * 1000)
	}
	return int64(v)
}
