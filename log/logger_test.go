package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stderr)
	defer SetLevel(Notice)

	logger := New("test")

	SetLevel(Notice)
	logger.Debugf("hidden %d", 1)
	logger.Noticef("visible %d", 2)

	SetLevel(Debug)
	logger.Debugf("visible %d", 3)

	out := buf.String()
	if strings.Contains(out, "hidden 1") {
		t.Fatalf("expected debug message to be filtered; got %q", out)
	}
	for _, exp := range []string{"[test] [NOTICE] visible 2", "[test] [DEBUG] visible 3"} {
		if !strings.Contains(out, exp) {
			t.Fatalf("expected output to contain %q; got %q", exp, out)
		}
	}
	// A bytes.Buffer is not a terminal.
	if strings.Contains(out, "\033[") {
		t.Fatalf("expected plain output without colour codes; got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	type spec struct {
		name string
		exp  Level
	}
	specs := []spec{
		{"debug", Debug},
		{"INFO", Info},
		{"", Notice},
		{"warn", Warning},
		{"error", Error},
	}
	for index, s := range specs {
		level, err := ParseLevel(s.name)
		if err != nil {
			t.Fatalf("[spec %d] unexpected error %v", index, err)
		}
		if level != s.exp {
			t.Fatalf("[spec %d] expected level %d; got %d", index, s.exp, level)
		}
	}

	if _, err := ParseLevel("chatty"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
