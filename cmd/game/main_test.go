package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomz197/cryptosurvivor/internal/config"
)

func TestLogOutputDiscardsWithoutFile(t *testing.T) {
	out, closeLog := logOutput("")
	defer closeLog()
	if out != io.Discard {
		t.Fatalf("expected io.Discard without a log file, got %T", out)
	}

	logger := config.NewLogger("game")
	logger.SetOutput(out)
	logger.Error("must not reach the terminal")
}

func TestLogOutputUnopenableFileDiscards(t *testing.T) {
	out, closeLog := logOutput(filepath.Join(t.TempDir(), "missing", "game.log"))
	defer closeLog()
	if out != io.Discard {
		t.Fatalf("expected io.Discard for an unopenable path, got %T", out)
	}
}

func TestLogOutputWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	out, closeLog := logOutput(path)

	logger := config.NewLogger("game")
	logger.SetOutput(out)
	logger.Error("collision", "score", 12)
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "collision") {
		t.Errorf("log file missing entry: %q", data)
	}
}
