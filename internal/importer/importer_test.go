package importer

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseTimesText(t *testing.T) {
	times, err := ParseTimes(strings.NewReader("12.34\n\n9.5\n"))
	if err != nil {
		t.Fatalf("parse text: %v", err)
	}
	if !reflect.DeepEqual(times, []int64{12340, 9500}) {
		t.Fatalf("unexpected times: %v", times)
	}
}

func TestParseTimesTextMilliseconds(t *testing.T) {
	times, err := ParseTimes(strings.NewReader("12340\n9500\n"))
	if err != nil {
		t.Fatalf("parse text: %v", err)
	}
	if !reflect.DeepEqual(times, []int64{12340, 9500}) {
		t.Fatalf("unexpected times: %v", times)
	}
}

func TestParseTimesJSON(t *testing.T) {
	times, err := ParseTimes(strings.NewReader(`[5000, 6000, 12.34]`))
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if !reflect.DeepEqual(times, []int64{5000, 6000, 12340}) {
		t.Fatalf("unexpected times: %v", times)
	}
}

func TestParseTimesInvalid(t *testing.T) {
	if _, err := ParseTimes(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty export")
	}
	if _, err := ParseTimes(strings.NewReader("12.3x\n")); err == nil {
		t.Fatalf("expected error for malformed line")
	}
	if _, err := ParseTimes(strings.NewReader(`[{"time":1}]`)); err == nil {
		t.Fatalf("expected error for non-numeric JSON")
	}
	if _, err := ParseTimes(strings.NewReader(`[]`)); err == nil {
		t.Fatalf("expected error for empty JSON array")
	}
}

func TestLoadTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.txt")
	if err := os.WriteFile(path, []byte("10.0\n20.0\n"), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	times, err := LoadTimes(path)
	if err != nil {
		t.Fatalf("load times: %v", err)
	}
	if !reflect.DeepEqual(times, []int64{10000, 20000}) {
		t.Fatalf("unexpected times: %v", times)
	}
	if _, err := LoadTimes(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
