package server

import (
	"sort"

	"github.com/tomz197/cryptosurvivor/internal/spectate"
)

// topScoreCount is how many live scores the lobby keeps.
const topScoreCount = 5

// TopScoreEntry represents a single entry on the live leaderboard.
type TopScoreEntry struct {
	Username string
	Score    int
	clientID int // Used for deterministic tie-break when scores are equal
}

// LobbySnapshot is an immutable view of the server shared with every client.
type LobbySnapshot struct {
	Players   int
	TopScores []TopScoreEntry
}

// topScores returns the n best entries, highest score first.
func topScores(entries []TopScoreEntry, n int) []TopScoreEntry {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].clientID < entries[j].clientID
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// sortSessions orders spectator sessions by player name so viewers see a stable layout.
func sortSessions(sessions []spectate.Snapshot) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Player < sessions[j].Player
	})
}
