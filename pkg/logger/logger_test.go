package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_WritesJSONWithService(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	log := Init(Options{Level: "info", Output: &buf, Service: "toolbox"})
	log.Info().Str("k", "v").Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", buf.String(), err)
	}
	if line["service"] != "toolbox" || line["message"] != "hello" || line["k"] != "v" {
		t.Fatalf("unexpected line %v", line)
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second})
	l := Get()
	l.Info().Msg("x")

	if first.Len() == 0 || second.Len() != 0 {
		t.Fatalf("second Init must not replace the logger")
	}
}

func TestGet_BeforeInitIsNop(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if Get().GetLevel() != zerolog.Disabled {
		t.Fatalf("expected a disabled logger before Init")
	}
}

func TestFor_AddsComponent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Output: &buf})
	l := For("sessions")
	l.Info().Msg("x")

	var line map[string]any
	_ = json.Unmarshal(buf.Bytes(), &line)
	if line["component"] != "sessions" {
		t.Fatalf("expected component field, got %v", line)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
