package client

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/tomz197/cryptosurvivor/internal/draw"
	"github.com/tomz197/cryptosurvivor/internal/input"
	"github.com/tomz197/cryptosurvivor/internal/loop"
	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/loop/server"
)

// Client handles rendering and input for a single connection.
type Client struct {
	server       server.GameServer // Optional
	handle       *server.ClientHandle
	session      *loop.Session
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	styles       styles
	rng          *rand.Rand // Cosmetic randomness: shake offsets, messages
	mouse        bool
	log          *log.Logger
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Store        loop.HighScoreStore
	Mode         loop.ControlMode
	Seed         int64 // 0 picks a time-based seed
	Mouse        bool  // Enable mouse tracking for steering and clicks
	Logger       *log.Logger
}

// NewClient creates a new client. gs may be nil for single-player hosts.
func NewClient(gs server.GameServer, r io.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var handle *server.ClientHandle
	if gs != nil {
		handle = gs.RegisterClient(opts.Username)
	}

	session := loop.NewSession(loop.SessionOptions{
		Player: opts.Username,
		Store:  opts.Store,
		Mode:   opts.Mode,
		Seed:   seed,
		Logger: logger,
	})

	termWidth, termHeight, _ := draw.TerminalSizeRawWith(termSizeFunc)
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewCanvas(renderWidth, renderHeight, config.FieldWidth, config.FieldHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(termenv.TrueColor)

	return &Client{
		server:       gs,
		handle:       handle,
		session:      session,
		state:        NewClientState(),
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		lastInput:    time.Now(),
		inputStream:  input.StartStream(r),
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
		styles:       newStyles(renderer),
		rng:          rand.New(rand.NewSource(seed + 1)),
		mouse:        opts.Mouse,
		log:          logger,
	}
}

// Session exposes the game session driven by this client.
func (c *Client) Session() *loop.Session { return c.session }

// Run starts the client loop. Blocks until the client disconnects, ctx ends
// or the server stops.
func (c *Client) Run(ctx context.Context) error {
	c.session.LoadHighScore(ctx)

	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	if c.mouse {
		draw.EnableMouse(c.writer)
		defer draw.DisableMouse(c.writer)
	}
	draw.ClearScreen(c.writer)

	lastTime := time.Now()
	var runErr error

	for c.state.Running {
		if ctx.Err() != nil {
			break
		}
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		c.processInput(frameStart)
		c.processServerEvents()
		c.updateScreen()
		c.update(frameStart)

		if err := c.drawFrame(frameStart); err != nil {
			runErr = err
			break
		}

		elapsed := time.Since(frameStart)
		if elapsed < config.TickTime {
			time.Sleep(config.TickTime - elapsed)
		}
	}

	c.session.Close()
	c.session.Wait()
	if c.server != nil {
		c.server.UnregisterClient(c.handle.ID)
	}

	draw.ClearScreen(c.writer)
	return runErr
}

// processInput reads input and forwards it to the session.
func (c *Client) processInput(now time.Time) {
	in := input.ReadInput(c.inputStream)
	nowMs := now.UnixMilli()

	if len(in.Pressed) > 0 {
		c.lastInput = now
		c.state.isInactive = false
	} else if now.Sub(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.state.Running = false
	} else if now.Sub(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if in.Close {
		c.state.Running = false
		return
	}
	if c.state.Shutdown {
		return
	}

	st := c.session.State()
	if in.SwitchMode {
		next := loop.ControlSteer
		if st.ControlMode == loop.ControlSteer {
			next = loop.ControlToggle
		}
		c.session.SetControlMode(next)
		st.ControlMode = next
	}

	for i := 0; i < in.Primary; i++ {
		c.session.Primary(nowMs)
	}

	switch st.ControlMode {
	case loop.ControlSteer:
		if in.Mouse {
			x, y := c.canvas.TerminalToLogical(in.MouseCol, in.MouseRow)
			c.session.SteerToPoint(x, y)
		}
		if in.Left {
			c.session.Nudge(-config.PlayerNudgeStep)
		} else if in.Right {
			c.session.Nudge(config.PlayerNudgeStep)
		}
	default:
		if in.Left {
			c.session.SetDirection(-1)
		} else if in.Right {
			c.session.SetDirection(1)
		}
	}
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	if c.handle == nil {
		return
	}
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				c.state.Running = false
				return
			}
			if event.Type == server.EventServerShutdown {
				c.state.Shutdown = true
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// update advances the session and tracks phase transitions.
func (c *Client) update(now time.Time) {
	if c.state.Shutdown {
		c.state.shutdownTimer -= c.state.delta.Seconds()
		if c.state.shutdownTimer <= 0 {
			c.state.Running = false
		}
		return
	}

	c.session.Tick(now.UnixMilli())
	st := c.session.State()

	if st.Status == loop.StatusGameOver && c.state.prevStatus != loop.StatusGameOver {
		c.state.gameOverMsg = gameOverMessages[c.rng.Intn(len(gameOverMessages))]
		c.state.newRecord = c.session.NewRecord()
		input.ResetKeyInput(c.inputStream)
	}

	c.state.tick++
	if c.handle != nil && c.state.tick%config.SpectatorPublishEvery == 0 {
		c.handle.Publish(st)
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := draw.TerminalSizeRawWith(c.termSizeFunc)
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = max(min(termWidth, config.MaxTermWidth), 1)
	renderHeight = max(min(termHeight, config.MaxTermHeight), 1)
	offsetCol = max((termWidth-renderWidth)/2, 0)
	offsetRow = max((termHeight-renderHeight)/2, 0)
	return
}
