// Package store persists per-player high scores.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrMalformed is returned alongside a zero score when the stored value
// cannot be read back as a non-negative integer.
var ErrMalformed = errors.New("store: malformed high score")

// Entry is one leaderboard row.
type Entry struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}

// HighScoreStore reads and writes high scores. Implementations must be safe
// for concurrent use.
type HighScoreStore interface {
	GetHighScore(ctx context.Context, player string) (int, error)
	SetHighScore(ctx context.Context, player string, score int) error
	TopScores(ctx context.Context, limit int) ([]Entry, error)
}

// NormalizePlayer trims and bounds a player name. Empty names map to "anonymous".
func NormalizePlayer(name string, maxLen int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "anonymous"
	}
	if maxLen > 0 {
		r := []rune(name)
		if len(r) > maxLen {
			name = string(r[:maxLen])
		}
	}
	return name
}

// Memory is an in-process HighScoreStore.
type Memory struct {
	mu     sync.RWMutex
	scores map[string]int
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{scores: make(map[string]int)}
}

var _ HighScoreStore = (*Memory)(nil)

// GetHighScore returns the stored score, 0 if absent.
func (m *Memory) GetHighScore(ctx context.Context, player string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scores[player], nil
}

// SetHighScore raises the stored score to score; lower values are ignored.
func (m *Memory) SetHighScore(ctx context.Context, player string, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if score > m.scores[player] {
		m.scores[player] = score
	}
	return nil
}

// TopScores returns the best limit entries, highest first, ties by name.
func (m *Memory) TopScores(ctx context.Context, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	entries := make([]Entry, 0, len(m.scores))
	for p, s := range m.scores {
		entries = append(entries, Entry{Player: p, Score: s})
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Player < entries[j].Player
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
