package main

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/tomz197/cryptosurvivor/internal/config"
	"github.com/tomz197/cryptosurvivor/internal/loop"
	gameconfig "github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/store"
)

const defaultDBPath = "cryptosurvivor.db"

// Game adapts a loop.Session to ebiten's Update/Draw cycle.
type Game struct {
	session     *loop.Session
	gameOverMsg string
	newRecord   bool
	prevStatus  loop.Status
	now         func() time.Time
}

func newGame(session *loop.Session) *Game {
	return &Game{session: session, prevStatus: session.Status(), now: time.Now}
}

// Update reads input and advances the session one tick.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || g.session.Closed() {
		g.session.Close()
		return ebiten.Termination
	}

	now := g.now().UnixMilli()
	st := g.session.State()

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		next := loop.ControlSteer
		if st.ControlMode == loop.ControlSteer {
			next = loop.ControlToggle
		}
		g.session.SetControlMode(next)
		st.ControlMode = next
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.session.Primary(now)
	}

	left := ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA)
	right := ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD)
	if st.ControlMode == loop.ControlSteer {
		switch {
		case left:
			g.session.Nudge(-gameconfig.PlayerNudgeStep)
		case right:
			g.session.Nudge(gameconfig.PlayerNudgeStep)
		default:
			x, y := ebiten.CursorPosition()
			g.session.SteerToPoint(float64(x), float64(y))
		}
	} else if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.session.SetDirection(-1)
	} else if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.session.SetDirection(1)
	}

	g.session.Tick(now)
	g.trackGameOver(g.session.State())
	return nil
}

// trackGameOver picks the game over message once per game.
func (g *Game) trackGameOver(st loop.GameState) {
	if st.Status == loop.StatusGameOver && g.prevStatus != loop.StatusGameOver {
		g.gameOverMsg = gameOverMessages[int(st.LastTick)%len(gameOverMessages)]
		g.newRecord = g.session.NewRecord()
	}
	g.prevStatus = st.Status
}

// Layout keeps the logical field size; ebiten scales it to the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	screen := g.session.Screen()
	return screen.Width, screen.Height
}

func main() {
	config.LoadDotEnv()
	logger := config.NewLogger("desktop")

	var scores loop.HighScoreStore
	db, err := store.OpenSQLite(config.GetEnv("HIGHSCORE_DB", defaultDBPath))
	if err != nil {
		logger.Warn("high scores will not persist", "err", err)
		scores = store.NewMemory()
	} else {
		defer db.Close()
		scores = db
	}

	session := loop.NewSession(loop.SessionOptions{
		Player: store.NormalizePlayer(config.GetEnv("USER", ""), gameconfig.MaxUsernameLength),
		Store:  scores,
		Mode:   loop.ParseControlMode(config.GetEnv("CONTROL_MODE", "steer")),
		Seed:   int64(config.GetEnvInt("GAME_SEED", 0)),
		Logger: logger,
	})
	session.LoadHighScore(context.Background())

	ebiten.SetWindowSize(gameconfig.FieldWidth*2, gameconfig.FieldHeight*2)
	ebiten.SetWindowTitle("Crypto Survivor")
	ebiten.SetWindowResizable(true)
	ebiten.SetTPS(gameconfig.TickRate)

	err = ebiten.RunGame(newGame(session))
	session.Close()
	session.Wait()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal("game error", "err", err)
	}
}
