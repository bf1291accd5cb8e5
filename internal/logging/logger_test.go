//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInitLevel(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})

	Info().Msg("hidden")
	Warn().Str("dimension", "cliente").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info event written at warn level: %s", out)
	}

	var event map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &event); err != nil {
		t.Fatalf("expected one JSON event, got %q: %v", out, err)
	}
	if event["dimension"] != "cliente" || event["message"] != "shown" {
		t.Errorf("unexpected event: %v", event)
	}
	if _, ok := event["time"]; !ok {
		t.Error("event has no timestamp")
	}
}

func TestInitInvalidLevel(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "loud", Output: &buf})

	Debug().Msg("debug")
	Info().Msg("info")

	out := buf.String()
	if strings.Contains(out, `"message":"debug"`) {
		t.Errorf("debug event written with fallback level: %s", out)
	}
	if !strings.Contains(out, `"message":"info"`) {
		t.Errorf("info event missing: %s", out)
	}
}

func TestRun(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})

	l := Run("6f1c")
	l.Info().Msg("started")

	if !strings.Contains(buf.String(), `"run_id":"6f1c"`) {
		t.Errorf("run id missing: %s", buf.String())
	}
}
