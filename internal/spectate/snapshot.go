// Package spectate streams live session snapshots to remote viewers.
package spectate

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomz197/cryptosurvivor/internal/loop"
	"github.com/tomz197/cryptosurvivor/internal/object"
)

// Obstacle is the wire form of an obstacle.
type Obstacle struct {
	Angle     float64   `msgpack:"a"`
	Span      float64   `msgpack:"s"`
	Radius    float64   `msgpack:"r"`
	Thickness float64   `msgpack:"t"`
	Color     string    `msgpack:"c"`
	Type      string    `msgpack:"k"`
	Gaps      []float64 `msgpack:"g,omitempty"`
}

// PowerUp is the wire form of an uncollected power-up.
type PowerUp struct {
	Type string  `msgpack:"k"`
	X    float64 `msgpack:"x"`
	Y    float64 `msgpack:"y"`
}

// Snapshot is a compact view of one session, enough to draw it.
type Snapshot struct {
	Player      string     `msgpack:"p"`
	Status      string     `msgpack:"st"`
	Score       int        `msgpack:"sc"`
	HighScore   int        `msgpack:"hs"`
	Wave        int        `msgpack:"w"`
	Combo       int        `msgpack:"co"`
	PlayerAngle float64    `msgpack:"pa"`
	Shake       float64    `msgpack:"sh"`
	Active      []string   `msgpack:"ap,omitempty"`
	Obstacles   []Obstacle `msgpack:"ob,omitempty"`
	PowerUps    []PowerUp  `msgpack:"pu,omitempty"`
}

// Frame is one broadcast: every live session at a point in time.
type Frame struct {
	Time     int64      `msgpack:"t"`
	Players  int        `msgpack:"n"`
	Sessions []Snapshot `msgpack:"s"`
}

// FromState builds the snapshot of player's state.
func FromState(player string, s loop.GameState) Snapshot {
	snap := Snapshot{
		Player:      player,
		Status:      string(s.Status),
		Score:       s.Score,
		HighScore:   s.HighScore,
		Wave:        s.Wave,
		Combo:       s.Combo,
		PlayerAngle: s.PlayerAngle,
		Shake:       s.ScreenShake,
	}
	for _, t := range object.PowerUpTypes {
		if s.HasPowerUp(t) {
			snap.Active = append(snap.Active, string(t))
		}
	}
	for _, o := range s.Obstacles {
		snap.Obstacles = append(snap.Obstacles, Obstacle{
			Angle:     o.Angle,
			Span:      o.Span,
			Radius:    o.Radius,
			Thickness: o.Thickness,
			Color:     o.Color,
			Type:      string(o.Type),
			Gaps:      o.Gaps,
		})
	}
	for _, p := range s.PowerUps {
		if p.Collected {
			continue
		}
		snap.PowerUps = append(snap.PowerUps, PowerUp{Type: string(p.Type), X: p.X, Y: p.Y})
	}
	return snap
}

// Encode marshals a frame to msgpack.
func Encode(f Frame) ([]byte, error) {
	data, err := msgpack.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return data, nil
}

// Decode unmarshals a msgpack frame.
func Decode(data []byte) (Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}
