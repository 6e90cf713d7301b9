package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/cryptosurvivor/internal/loop"
	"github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/loop/server"
	"github.com/tomz197/cryptosurvivor/internal/object"
)

var gameOverMessages = []string{
	"You got REKT! 📉",
	"Paper hands detected 📄",
	"The FUD was too strong!",
	"Should've diamond handed 💎",
	"NGMI this time 😅",
}

// styles are the lipgloss styles for text overlays, bound to the client's renderer.
type styles struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	text     lipgloss.Style
	hint     lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	danger   lipgloss.Style
	record   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	bg := lipgloss.Color(backgroundColor)
	return styles{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color(playerColor)).Background(bg),
		subtitle: r.NewStyle().Foreground(lipgloss.Color("#ffdd99")).Background(bg),
		text:     r.NewStyle().Foreground(lipgloss.Color("#e6edf3")).Background(bg),
		hint:     r.NewStyle().Foreground(lipgloss.Color("#8b949e")).Background(bg),
		label:    r.NewStyle().Foreground(lipgloss.Color("#8b949e")).Background(bg),
		value:    r.NewStyle().Bold(true).Foreground(lipgloss.Color(playerColor)).Background(bg),
		danger:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff7b7b")).Background(bg),
		record:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffdd99")).Background(bg),
	}
}

// drawFrame draws the current frame.
func (c *Client) drawFrame(now time.Time) error {
	st := c.session.State()

	// On phase or inactivity transitions, do a full terminal clear
	// so UI elements from the previous phase don't persist on screen.
	stateChanged := st.Status != c.state.prevStatus
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevStatus = st.Status
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()

	var offX, offY float64
	if st.ScreenShake > 0 {
		offX = (c.rng.Float64() - 0.5) * st.ScreenShake
		offY = (c.rng.Float64() - 0.5) * st.ScreenShake
	}
	drawField(c.canvas, st, c.session.Screen(), now.UnixMilli(), offX, offY)

	c.canvas.Render(c.chunkWriter)
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawPopups(st)
	c.drawUI(st, now)

	return c.chunkWriter.Flush()
}

// drawUI draws the text overlay for the current phase.
func (c *Client) drawUI(st loop.GameState, now time.Time) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerY := termHeight / 2

	if c.state.Shutdown {
		c.drawShutdownScreen(centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerY, now)
		return
	}

	switch st.Status {
	case loop.StatusPlaying:
		c.drawPlayingHUD(st, termWidth, termHeight, now)
	case loop.StatusStart:
		c.drawStartScreen(st, centerY, now)
	case loop.StatusGameOver:
		c.drawGameOverScreen(st, centerY, now)
	}
}

// writeCentered writes a styled line centered horizontally on row.
func (c *Client) writeCentered(row int, style lipgloss.Style, s string) {
	c.writeStyled((c.canvas.TerminalWidth()-lipgloss.Width(s))/2+1, row, style, s)
}

// writeStyled writes a styled string at (col, row) and marks the covered
// cells so the canvas repaints them next frame.
func (c *Client) writeStyled(col, row int, style lipgloss.Style, s string) {
	if row < 1 || row > c.canvas.TerminalHeight() {
		return
	}
	col = max(col, 1)
	c.chunkWriter.WriteAt(col, row, style.Render(s))
	c.canvas.MarkTextDirty(col, row, lipgloss.Width(s))
}

// drawStartScreen draws the title screen.
func (c *Client) drawStartScreen(st loop.GameState, centerY int, now time.Time) {
	s := c.styles
	c.writeCentered(centerY-4, s.title, "💎 CRYPTO SURVIVOR 💎")
	c.writeCentered(centerY-2, s.subtitle, "Dodge the FUD!")

	c.writeCentered(centerY+1, s.hint, controlHint(st.ControlMode))
	c.writeCentered(centerY+2, s.hint, "Tab = Switch Mode | Q = Quit")

	if st.HighScore > 0 {
		c.writeCentered(centerY+4, s.label, fmt.Sprintf("Best HODL: %d", st.HighScore))
	}

	if blinkOn(now) {
		c.writeCentered(centerY+6, s.text, ">>  Press SPACE or Click to Start  <<")
	}
}

// controlHint describes the controls of the active mode.
func controlHint(m loop.ControlMode) string {
	if m == loop.ControlSteer {
		return "Mouse / A D / < > = Steer"
	}
	return "Click or Space to toggle direction"
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawPlayingHUD(st loop.GameState, termWidth, termHeight int, now time.Time) {
	s := c.styles
	c.writeStyled(2, 1, s.label, "HODL TIME")
	c.writeStyled(2, 2, s.value, fmt.Sprintf("%-8d", st.Score))

	wave := fmt.Sprintf("Wave %-3d", st.Wave)
	c.writeStyled(termWidth-len(wave)-1, 1, s.text, wave)

	combo := strings.Repeat(" ", 10)
	if st.Combo > 1 {
		combo = fmt.Sprintf("%-10s", fmt.Sprintf("Combo x%d", st.Combo))
	}
	c.writeStyled(termWidth-len(combo)-1, 2, s.record, combo)

	row := 4
	for _, ap := range st.ActivePowerUps {
		info := ap.Type.Info()
		label := info.Name
		if ap.Type != object.PowerUpShield {
			label = fmt.Sprintf("%s %4.1fs", info.Name, st.PowerUpRemaining(ap.Type, now.UnixMilli()))
		}
		c.writeStyled(2, row, s.text.Foreground(lipgloss.Color(info.Color)), fmt.Sprintf("%-20s", label))
		row++
	}
	// Blank the rows a just-expired power-up used.
	for ; row < 4+len(object.PowerUpTypes); row++ {
		c.writeStyled(2, row, s.text, strings.Repeat(" ", 20))
	}

	c.writeStyled(2, termHeight, s.hint, fmt.Sprintf("%-7s", st.ControlMode))

	if c.server == nil {
		return
	}
	lobby := c.server.GetSnapshot()
	if lobby == nil {
		return
	}
	players := fmt.Sprintf("Players: %-4d", lobby.Players)
	c.writeStyled(termWidth-len(players)-1, termHeight, s.label, players)
	if leader := leaderLine(lobby); leader != "" {
		c.writeStyled(termWidth-lipgloss.Width(leader)-1, termHeight-1, s.label, leader)
	}
}

// leaderLine formats the top live score, padded to a fixed width.
func leaderLine(lobby *server.LobbySnapshot) string {
	if len(lobby.TopScores) == 0 {
		return ""
	}
	top := lobby.TopScores[0]
	name := top.Username
	if len(name) > config.MaxUsernameLength {
		name = name[:config.MaxUsernameLength]
	}
	return fmt.Sprintf("Leader: %-*s %8d", config.MaxUsernameLength, name, top.Score)
}

// drawGameOverScreen draws the game over screen.
func (c *Client) drawGameOverScreen(st loop.GameState, centerY int, now time.Time) {
	s := c.styles
	c.writeCentered(centerY-4, s.danger, "GAME OVER")
	if c.state.gameOverMsg != "" {
		c.writeCentered(centerY-2, s.subtitle, c.state.gameOverMsg)
	}
	c.writeCentered(centerY, s.value, fmt.Sprintf("HODL TIME: %d", st.Score))
	c.writeCentered(centerY+1, s.label, fmt.Sprintf("Best HODL: %d", st.HighScore))
	if c.state.newRecord {
		c.writeCentered(centerY+3, s.record, "🏆 NEW HIGH SCORE!")
	}
	if blinkOn(now) {
		c.writeCentered(centerY+5, s.text, ">>  Press SPACE or Click to Retry  <<")
	}
}

// drawPopups writes the floating score texts at their field positions.
func (c *Client) drawPopups(st loop.GameState) {
	for _, p := range st.ScorePopups {
		if p.Alpha() < 0.15 {
			continue
		}
		col, row := c.canvas.LogicalToTerminal(p.X, p.Y)
		col -= lipgloss.Width(p.Text) / 2
		if col < 1 || col+lipgloss.Width(p.Text) > c.canvas.TerminalWidth() {
			continue
		}
		style := c.styles.text.Foreground(lipgloss.Color(p.Color))
		// Blend into whatever the field shows under the text.
		if under, ok := c.canvas.Pixel(p.X, p.Y); ok {
			style = style.Background(lipgloss.Color(under.Hex()))
		}
		c.writeStyled(col, row, style, p.Text)
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerY int, now time.Time) {
	s := c.styles
	c.writeCentered(centerY-2, s.danger, "INACTIVITY WARNING")
	remaining := int(config.InactivityDisconnectUser - now.Sub(c.lastInput).Seconds())
	c.writeCentered(centerY, s.text, fmt.Sprintf("You will be disconnected in %d seconds.", max(remaining, 0)))
	c.writeCentered(centerY+2, s.hint, "Press any key to continue")
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerY int) {
	s := c.styles
	c.writeCentered(centerY-3, s.danger, "SERVER SHUTTING DOWN")
	c.writeCentered(centerY-1, s.text, "The server is restarting for maintenance.")
	c.writeCentered(centerY, s.text, "Please reconnect in a moment.")
	remaining := int(c.state.shutdownTimer) + 1
	c.writeCentered(centerY+2, s.text, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	c.writeCentered(centerY+4, s.hint, "Press Q to disconnect now")
}

func blinkOn(now time.Time) bool {
	return now.UnixMilli()/600%2 == 0
}
