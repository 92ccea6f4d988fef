package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oszuidwest/swim-stopwatch/internal/config"
	"github.com/oszuidwest/swim-stopwatch/internal/notify"
	"github.com/oszuidwest/swim-stopwatch/internal/page"
	"github.com/oszuidwest/swim-stopwatch/internal/results"
	"github.com/oszuidwest/swim-stopwatch/internal/server"
	"github.com/oszuidwest/swim-stopwatch/internal/stopwatch"
	"github.com/oszuidwest/swim-stopwatch/internal/types"
	"github.com/oszuidwest/swim-stopwatch/internal/util"
)

// Maximum lengths for fields submitted with a finished swim.
const (
	maxNameLength     = 64
	maxPoolLength     = 64
	maxStrokeLength   = 32
	maxDistanceLength = 16
)

// Server is an HTTP server that provides the stopwatch web interface.
type Server struct {
	config   *config.Config
	watch    *stopwatch.Stopwatch
	results  *results.Store
	notifier *notify.Notifier
	commands *server.CommandHandler
	version  *VersionChecker

	index  page.Template
	script page.Asset
	style  page.Asset
}

// NewServer returns a new Server wired to the given stopwatch, results and notifier.
func NewServer(cfg *config.Config, watch *stopwatch.Stopwatch, store *results.Store, notifier *notify.Notifier, version *VersionChecker) *Server {
	s := &Server{
		config:   cfg,
		watch:    watch,
		results:  store,
		notifier: notifier,
		version:  version,
		index:    page.New(indexHTML),
		script:   page.NewAsset("app.js", "application/javascript", appJS),
		style:    page.NewAsset("app.css", "text/css", appCSS),
	}
	s.commands = server.NewCommandHandler(watch.Start, watch.Stop, watch.Reset, s.clearResults)
	return s
}

// SetupRoutes returns an [http.Handler] configured with all application routes.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /app.js", s.handleAsset(s.script))
	mux.HandleFunc("GET /app.css", s.handleAsset(s.style))

	mux.HandleFunc("GET /time", s.handleTime)
	mux.HandleFunc("GET /start", s.handleAction("start", s.watch.Start))
	mux.HandleFunc("GET /stop", s.handleAction("stop", s.watch.Stop))
	mux.HandleFunc("GET /reset", s.handleAction("reset", s.watch.Reset))
	mux.HandleFunc("GET /finish", s.handleFinish)
	mux.HandleFunc("POST /clear", s.handleClear)
	mux.HandleFunc("GET /download", s.handleDownload)

	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return mux
}

// handleIndex serves the page with the current results injected.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.index.Serve(w, map[string]string{page.ResultsKey: s.results.Log()})
}

// handleAsset serves a static asset verbatim.
func (s *Server) handleAsset(asset page.Asset) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asset.Serve(w)
	}
}

// handleTime returns the stopwatch display as plain text.
func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeText(w, http.StatusOK, s.watch.Display())
}

// handleAction runs a stopwatch control and acknowledges it.
func (s *Server) handleAction(name string, action func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action()
		slog.Debug("stopwatch action", "action", name, "display", s.watch.Display())
		writeText(w, http.StatusOK, "OK")
	}
}

// handleFinish stops the stopwatch and records the time for the submitted swimmer.
func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entry := results.Entry{
		Name:     strings.TrimSpace(q.Get("name")),
		Pool:     strings.TrimSpace(q.Get("pool")),
		Stroke:   strings.TrimSpace(q.Get("stroke")),
		Distance: strings.TrimSpace(q.Get("distance")),
	}

	if verr := util.FirstInvalid(
		util.ValidateRequired("name", entry.Name),
		util.ValidateMaxLength("name", entry.Name, maxNameLength),
		util.ValidateMaxLength("pool", entry.Pool, maxPoolLength),
		util.ValidateMaxLength("stroke", entry.Stroke, maxStrokeLength),
		util.ValidateMaxLength("distance", entry.Distance, maxDistanceLength),
	); verr != nil {
		slog.Warn("finish: validation failed", "field", verr.Field, "error", verr.Message)
		writeText(w, http.StatusBadRequest, verr.Message)
		return
	}

	s.watch.Stop()
	entry.Elapsed = s.watch.Elapsed()
	entry = s.results.Add(entry)
	slog.Info("result recorded", "id", entry.ID, "name", entry.Name, "stroke", entry.Stroke, "distance", entry.Distance, "time", entry.Time())
	s.notifier.ResultRecorded(entry)

	writeText(w, http.StatusOK, "OK")
}

// handleClear removes all recorded results.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	n := s.clearResults()
	slog.Info("results cleared", "source", "http", "count", n)
	writeText(w, http.StatusOK, "OK")
}

// clearResults clears the store, notifies about the removed entries and returns their count.
func (s *Server) clearResults() int {
	removed := s.results.Clear()
	s.notifier.ResultsCleared(removed)
	return len(removed)
}

// handleDownload serves all results as a CSV attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="results.csv"`)
	if err := results.WriteCSV(w, s.results.Entries()); err != nil {
		slog.Error("failed to write results CSV", "error", err)
	}
}

// handleWebSocket streams stopwatch time and device status to scoreboards.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := server.UpgradeConnection(w, r)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer util.SafeCloseFunc(conn, "WebSocket connection")()

	statusUpdate := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			var cmd server.WSCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			s.commands.Handle(cmd, func() {
				select {
				case statusUpdate <- struct{}{}:
				default:
				}
			})
		}
	}()

	timeTicker := time.NewTicker(types.TimeInterval)
	statusTicker := time.NewTicker(types.StatusInterval)
	defer timeTicker.Stop()
	defer statusTicker.Stop()

	sendStatus := func() error {
		return conn.WriteJSON(s.status())
	}

	if err := sendStatus(); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-statusUpdate:
			if err := sendStatus(); err != nil {
				return
			}
		case <-timeTicker.C:
			if err := conn.WriteJSON(types.WSTime{Type: "time", State: s.watch.Snapshot()}); err != nil {
				return
			}
		case <-statusTicker.C:
			if err := sendStatus(); err != nil {
				return
			}
		}
	}
}

// status returns the current device status message.
func (s *Server) status() types.WSStatus {
	return types.WSStatus{
		Type:        "status",
		Stopwatch:   s.watch.Snapshot(),
		ResultCount: s.results.Len(),
		Version:     s.version.Info(),
	}
}

// writeText writes a plain-text response body.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Start begins listening and serving HTTP requests on the configured port.
// Returns an *http.Server that can be used for graceful shutdown.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.config.WebPort())
	slog.Info("starting web server", "addr", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	return srv
}
