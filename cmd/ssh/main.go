package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/cryptosurvivor/internal/config"
	"github.com/tomz197/cryptosurvivor/internal/draw"
	"github.com/tomz197/cryptosurvivor/internal/loop"
	"github.com/tomz197/cryptosurvivor/internal/loop/client"
	gameconfig "github.com/tomz197/cryptosurvivor/internal/loop/config"
	"github.com/tomz197/cryptosurvivor/internal/loop/server"
	"github.com/tomz197/cryptosurvivor/internal/spectate"
	"github.com/tomz197/cryptosurvivor/internal/store"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultDBPath      = "cryptosurvivor.db"
)

// app holds the state shared by all SSH sessions.
type app struct {
	server *server.Server
	scores loop.HighScoreStore
	mode   loop.ControlMode
	log    *log.Logger
}

func main() {
	config.LoadDotEnv()
	logger := config.NewLogger("ssh")

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	dbPath := config.GetEnv("HIGHSCORE_DB", defaultDBPath)
	spectateAddr := config.GetEnv("SPECTATE_ADDR", "")
	logger.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "db", dbPath)

	a := &app{
		mode: loop.ParseControlMode(config.GetEnv("CONTROL_MODE", "toggle")),
		log:  logger,
	}

	db, err := store.OpenSQLite(dbPath)
	if err != nil {
		logger.Warn("high scores will not persist", "err", err)
		a.scores = store.NewMemory()
	} else {
		defer db.Close()
		a.scores = db
	}

	// Optional spectator endpoint
	var hub *spectate.Hub
	var spectateSrv *http.Server
	if spectateAddr != "" {
		hub = spectate.NewHub(logger.WithPrefix("spectate"))
		mux := http.NewServeMux()
		mux.Handle("/spectate", hub)
		spectateSrv = &http.Server{Addr: spectateAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("starting spectator endpoint", "addr", spectateAddr)
			if err := spectateSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("spectator endpoint", "err", err)
			}
		}()
	}

	// Start the shared session server
	serverCtx, cancelServer := context.WithCancel(context.Background())
	opts := server.Options{Logger: logger.WithPrefix("server")}
	if hub != nil {
		opts.Publisher = hub
	}
	a.server = server.NewServer(opts)
	go a.server.Run(serverCtx)
	logger.Info("session server started")

	sshOpts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			a.gameMiddleware,
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		sshOpts = append(sshOpts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(sshOpts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server", "host", host, "port", port)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	// Notify players and wait for them to disconnect
	a.server.Shutdown(15 * time.Second)
	cancelServer()
	logger.Info("session server stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if spectateSrv != nil {
		hub.Close()
		if err := spectateSrv.Shutdown(ctx); err != nil {
			logger.Warn("spectator shutdown", "err", err)
		}
	}

	if err := s.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}

// gameMiddleware handles SSH sessions and runs a game client per connection.
func (a *app) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		player := store.NormalizePlayer(sess.User(), gameconfig.MaxUsernameLength)
		a.log.Info("new game session", "user", player, "terminal", pty.Term,
			"width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		c := client.NewClient(a.server, bufio.NewReader(sess), sess, client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     player,
			Store:        a.scores,
			Mode:         a.mode,
			Mouse:        true,
			Logger:       a.log.With("user", player),
		})
		if err := c.Run(sess.Context()); err != nil {
			a.log.Error("game error", "user", player, "err", err)
		}

		a.log.Info("session ended", "user", player)
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
