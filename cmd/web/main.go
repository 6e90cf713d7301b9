package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/cryptosurvivor/internal/config"
	"github.com/tomz197/cryptosurvivor/internal/store"
)

const (
	defaultHost   = "0.0.0.0"
	defaultPort   = "8080"
	defaultDBPath = "cryptosurvivor.db"
	maxTopScores  = 100
)

//go:embed index.html
var htmlPage string

func main() {
	config.LoadDotEnv()
	logger := config.NewLogger("web")

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")

	var scores store.HighScoreStore
	db, err := store.OpenSQLite(config.GetEnv("HIGHSCORE_DB", defaultDBPath))
	if err != nil {
		logger.Warn("serving an empty leaderboard", "err", err)
		scores = store.NewMemory()
	} else {
		defer db.Close()
		scores = db
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMux(sshHost, scores, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("starting web server", "addr", "http://"+addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("server error", "err", err)
	}
}

func newMux(sshHost string, scores store.HighScoreStore, logger *log.Logger) *http.ServeMux {
	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", sshHost)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	mux.HandleFunc("GET /api/highscores", func(w http.ResponseWriter, r *http.Request) {
		limit := 10
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = min(n, maxTopScores)
		}
		entries, err := scores.TopScores(r.Context(), limit)
		if err != nil {
			logger.Error("load top scores", "err", err)
			http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []store.Entry{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			logger.Warn("write top scores", "err", err)
		}
	})
	return mux
}
