package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// exerciseStore runs the behavior every HighScoreStore must share.
func exerciseStore(t *testing.T, s HighScoreStore) {
	ctx := context.Background()

	got, err := s.GetHighScore(ctx, "alice")
	if err != nil || got != 0 {
		t.Fatalf("absent score = %d, %v", got, err)
	}

	if err := s.SetHighScore(ctx, "alice", 300); err != nil {
		t.Fatal(err)
	}
	if err := s.SetHighScore(ctx, "alice", 100); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetHighScore(ctx, "alice"); got != 300 {
		t.Fatalf("score = %d, want 300 (never lowered)", got)
	}
	if err := s.SetHighScore(ctx, "alice", 450); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetHighScore(ctx, "alice"); got != 450 {
		t.Fatalf("score = %d, want 450", got)
	}

	s.SetHighScore(ctx, "bob", 450)
	s.SetHighScore(ctx, "carol", 900)
	s.SetHighScore(ctx, "dave", 10)

	top, err := s.TopScores(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{{"carol", 900}, {"alice", 450}, {"bob", 450}}
	if len(top) != len(want) {
		t.Fatalf("top = %+v", top)
	}
	for i := range want {
		if top[i] != want[i] {
			t.Fatalf("top[%d] = %+v, want %+v", i, top[i], want[i])
		}
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, openTestDB(t))
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetHighScore(context.Background(), "alice", 42); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if got, _ := s.GetHighScore(context.Background(), "alice"); got != 42 {
		t.Fatalf("score after reopen = %d", got)
	}
}

func TestSQLiteMalformedValues(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	if _, err := s.conn.Exec(`INSERT INTO high_scores (player, score) VALUES ('text', 'lots'), ('neg', -5), ('str', '77')`); err != nil {
		t.Fatal(err)
	}

	for _, player := range []string{"text", "neg"} {
		got, err := s.GetHighScore(ctx, player)
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: err = %v, want ErrMalformed", player, err)
		}
		if got != 0 {
			t.Fatalf("%s: score = %d, want 0", player, got)
		}
	}

	if got, err := s.GetHighScore(ctx, "str"); err != nil || got != 77 {
		t.Fatalf("numeric text = %d, %v", got, err)
	}

	if err := s.SetHighScore(ctx, "text", 5); err != nil {
		t.Fatal(err)
	}
	if got, err := s.GetHighScore(ctx, "text"); err != nil || got != 5 {
		t.Fatalf("after repair = %d, %v", got, err)
	}

	top, err := s.TopScores(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range top {
		if e.Player == "neg" {
			t.Fatal("malformed row listed")
		}
	}
}

func TestSQLiteRejectsNegative(t *testing.T) {
	if err := openTestDB(t).SetHighScore(context.Background(), "alice", -1); err == nil {
		t.Fatal("expected error")
	}
}

func TestMemoryConcurrentWrites(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			m.SetHighScore(context.Background(), "alice", score)
		}(i)
	}
	wg.Wait()
	if got, _ := m.GetHighScore(context.Background(), "alice"); got != 50 {
		t.Fatalf("score = %d, want 50", got)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemory().GetHighScore(ctx, "alice"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestNormalizePlayer(t *testing.T) {
	tests := map[string]string{
		"":                         "anonymous",
		"  bob  ":                  "bob",
		"averyveryverylongname123": "averyveryverylon",
	}
	for in, want := range tests {
		if got := NormalizePlayer(in, 16); got != want {
			t.Errorf("NormalizePlayer(%q) = %q, want %q", in, got, want)
		}
	}
}
