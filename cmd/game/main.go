package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/tomz197/cryptosurvivor/internal/config"
	"github.com/tomz197/cryptosurvivor/internal/loop"
	"github.com/tomz197/cryptosurvivor/internal/loop/client"
	gameconfig "github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/store"
)

const defaultDBPath = "cryptosurvivor.db"

// logOutput returns where the game logs while the terminal is in raw mode.
// Anything written to stderr would land inside the frame, so without a log
// file the output is discarded.
func logOutput(path string) (io.Writer, func()) {
	if path == "" {
		return io.Discard, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { _ = f.Close() }
}

func main() {
	config.LoadDotEnv()
	logger := config.NewLogger("game")

	out, closeLog := logOutput(config.GetEnv("LOG_FILE", ""))
	defer closeLog()
	logger.SetOutput(out)

	var scores loop.HighScoreStore
	db, err := store.OpenSQLite(config.GetEnv("HIGHSCORE_DB", defaultDBPath))
	if err != nil {
		logger.Warn("high scores will not persist", "err", err)
		scores = store.NewMemory()
	} else {
		defer db.Close()
		scores = db
	}

	player := store.NormalizePlayer(config.GetEnv("USER", ""), gameconfig.MaxUsernameLength)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.NewClient(nil, bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{
		Username: player,
		Store:    scores,
		Mode:     loop.ParseControlMode(config.GetEnv("CONTROL_MODE", "toggle")),
		Seed:     int64(config.GetEnvInt("GAME_SEED", 0)),
		Mouse:    config.GetEnvBool("MOUSE", true),
		Logger:   logger,
	})
	if err := c.Run(ctx); err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}
