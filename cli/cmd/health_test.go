// ABOUTME: Tests for the health command
// ABOUTME: Verifies health check output formatting and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatHealthHuman(t *testing.T) {
	output := formatHealthHuman(healthReport{API: "http://localhost:8080", Status: "ok", Categories: 5, VisibleCategories: 3, LatencyMS: 12})

	for _, want := range []string{"http://localhost:8080", "ok", "5 (3 shown)", "12ms"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q\n%s", want, output)
		}
	}
}

func TestHealthCommand_Success(t *testing.T) {
	useShop(t)
	jsonOutput = true

	var buf bytes.Buffer
	if code := runHealth(context.Background(), &buf); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	var parsed healthReport
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed.Status != "ok" || parsed.Categories != 4 || parsed.VisibleCategories != 3 {
		t.Errorf("unexpected report %+v", parsed)
	}
}

func TestHealthCommand_ConnectionError(t *testing.T) {
	apiURL = "http://127.0.0.1:1"
	defer func() { apiURL = "" }()

	var buf bytes.Buffer
	if code := runHealth(context.Background(), &buf); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
}
