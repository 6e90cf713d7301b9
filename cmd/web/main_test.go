package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tomz197/cryptosurvivor/internal/store"
)

type failingStore struct{ store.HighScoreStore }

func (failingStore) TopScores(context.Context, int) ([]store.Entry, error) {
	return nil, errors.New("disk on fire")
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestLandingPage(t *testing.T) {
	mux := newMux("play.example.com", store.NewMemory(), log.New(io.Discard))
	rec := get(t, mux, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "ssh -t play.example.com") {
		t.Error("landing page should contain the ssh host")
	}
	if strings.Contains(body, "{{.SSHHost}}") {
		t.Error("placeholder left in landing page")
	}
	if rec := get(t, mux, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rec.Code)
	}
}

func TestHighScoresAPI(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	for name, score := range map[string]int{"alice": 300, "bob": 120, "carol": 550} {
		if err := mem.SetHighScore(ctx, name, score); err != nil {
			t.Fatal(err)
		}
	}
	mux := newMux("host", mem, log.New(io.Discard))

	t.Run("sorted", func(t *testing.T) {
		rec := get(t, mux, "/api/highscores")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var entries []store.Entry
		if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
			t.Fatal(err)
		}
		if len(entries) != 3 || entries[0].Player != "carol" || entries[2].Score != 120 {
			t.Errorf("entries = %+v", entries)
		}
	})

	t.Run("limit", func(t *testing.T) {
		var entries []store.Entry
		rec := get(t, mux, "/api/highscores?limit=1")
		if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("got %d entries, want 1", len(entries))
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		if rec := get(t, mux, "/api/highscores?limit=-2"); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("empty is an array", func(t *testing.T) {
		rec := get(t, newMux("host", store.NewMemory(), log.New(io.Discard)), "/api/highscores")
		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("body = %q, want []", got)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		rec := get(t, newMux("host", failingStore{}, log.New(io.Discard)), "/api/highscores")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}
