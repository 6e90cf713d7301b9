package object

import (
	"math/rand"

	"github.com/tomz197/cryptosurvivor/internal/loop/config"
)

// ScorePopup is floating feedback text that drifts upward and fades.
type ScorePopup struct {
	ID      string
	Text    string
	X, Y    float64
	Life    int
	MaxLife int
	Color   string
}

// NewScorePopup creates a popup at (x, y).
func NewScorePopup(rng *rand.Rand, text string, x, y float64, color string) ScorePopup {
	return ScorePopup{
		ID:      NewID(rng),
		Text:    text,
		X:       x,
		Y:       y,
		Life:    config.ScorePopupLife,
		MaxLife: config.ScorePopupLife,
		Color:   color,
	}
}

// Alpha returns the remaining opacity.
func (p ScorePopup) Alpha() float64 {
	if p.MaxLife <= 0 {
		return 0
	}
	return float64(p.Life) / float64(p.MaxLife)
}

// UpdateScorePopups drifts popups upward and drops the expired ones.
func UpdateScorePopups(popups []ScorePopup) []ScorePopup {
	kept := make([]ScorePopup, 0, len(popups))
	for _, p := range popups {
		p.Y -= config.ScorePopupDrift
		p.Life--
		if p.Life <= 0 {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
