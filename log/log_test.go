// log/log_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "info", "warn", "error", "", "WARN"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q) = %v, expected no error", s, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("ParseLevel(\"loud\") expected an error")
	}
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	// None of these should crash.
	l.Debug("debug")
	l.Debugf("debug %d", 1)
	l.Info("info")
	l.Infof("info %d", 2)
	if l.With("a", 1) != nil {
		t.Errorf("With on nil logger should return nil")
	}
}

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "info")
	l.Debug("hidden")
	l.Info("shown", "callsign", "AAL1")
	l.With("pair", "A-B").Warnf("loss of separation %d", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at info level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "AAL1") {
		t.Errorf("info message missing: %s", out)
	}
	if !strings.Contains(out, "pair=A-B") || !strings.Contains(out, "loss of separation 3") {
		t.Errorf("With attributes missing: %s", out)
	}
	if !strings.Contains(out, "callstack") {
		t.Errorf("callstack attribute missing: %s", out)
	}
}

func TestCallstack(t *testing.T) {
	fr := func() []StackFrame { return Callstack(nil) }()
	if len(fr) == 0 {
		t.Fatalf("empty callstack")
	}
	for _, f := range fr {
		if f.File == "" || f.Line == 0 {
			t.Errorf("incomplete frame %s", f)
		}
	}
}
