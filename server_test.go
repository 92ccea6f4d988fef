package main

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oszuidwest/swim-stopwatch/internal/config"
	"github.com/oszuidwest/swim-stopwatch/internal/notify"
	"github.com/oszuidwest/swim-stopwatch/internal/results"
	"github.com/oszuidwest/swim-stopwatch/internal/stopwatch"
	"github.com/oszuidwest/swim-stopwatch/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a manually advanced time source for the stopwatch.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	handler http.Handler
	clock   *testClock
	store   *results.Store
	watch   *stopwatch.Stopwatch
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.New(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, cfg.Load())

	clock := &testClock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	watch := stopwatch.New(stopwatch.WithClock(clock.Now))
	store := results.NewStore()
	notifier := notify.NewNotifier(cfg)
	t.Cleanup(notifier.Wait)

	srv := NewServer(cfg, watch, store, notifier, &VersionChecker{})
	return &testEnv{
		handler: srv.SetupRoutes(),
		clock:   clock,
		store:   store,
		watch:   watch,
	}
}

func (e *testEnv) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestEmbeddedAssets(t *testing.T) {
	assert.Equal(t, 1, strings.Count(indexHTML, "%RESULTS%"))
	assert.Contains(t, indexHTML, `<script src="/app.js" defer></script>`)
	assert.Contains(t, indexHTML, `<link rel="stylesheet" href="/app.css">`)
	assert.Contains(t, appJS, "fetch('/time')")
	assert.Contains(t, appJS, "setInterval(updateTime, 120);")
	assert.Contains(t, appCSS, ".light-mode")
}

func TestIndexWithEmptyResults(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `<div id="results"></div>`)
	assert.Equal(t, strings.Replace(indexHTML, "%RESULTS%", "", 1), rec.Body.String())
}

func TestIndexShowsRecordedResults(t *testing.T) {
	env := newTestEnv(t)
	env.store.Add(results.Entry{Name: "Alice", Stroke: "Freestyle", Distance: "50m", Elapsed: 32150 * time.Millisecond})

	rec := env.do(t, http.MethodGet, "/")

	assert.Contains(t, rec.Body.String(), `<div id="results"><p>Alice — Freestyle 50m — 0:32:15</p></div>`)
	assert.NotContains(t, rec.Body.String(), "%RESULTS%")
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path        string
		contentType string
		body        string
	}{
		{"/app.js", "application/javascript", appJS},
		{"/app.css", "text/css", appCSS},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			first := env.do(t, http.MethodGet, tt.path)
			second := env.do(t, http.MethodGet, tt.path)

			assert.Equal(t, http.StatusOK, first.Code)
			assert.Equal(t, tt.contentType, first.Header().Get("Content-Type"))
			assert.Equal(t, tt.body, first.Body.String())
			assert.Equal(t, first.Body.String(), second.Body.String())
		})
	}
}

func TestStopwatchRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/time")
	assert.Equal(t, "0:00:00", rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	assert.Equal(t, "OK", env.do(t, http.MethodGet, "/start").Body.String())
	env.clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, "0:01:50", env.do(t, http.MethodGet, "/time").Body.String())

	env.do(t, http.MethodGet, "/stop")
	env.clock.Advance(time.Minute)
	assert.Equal(t, "0:01:50", env.do(t, http.MethodGet, "/time").Body.String())

	env.do(t, http.MethodGet, "/reset")
	assert.Equal(t, "0:00:00", env.do(t, http.MethodGet, "/time").Body.String())
}

func TestFinishRecordsResult(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/start")
	env.clock.Advance(32150 * time.Millisecond)
	rec := env.do(t, http.MethodGet, "/finish?name=+Alice+&pool=Aquatic+Center&stroke=Freestyle&distance=50m")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, env.watch.Running())

	entries := env.store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Alice", entries[0].Name)
	assert.Equal(t, "Aquatic Center", entries[0].Pool)
	assert.Equal(t, "0:32:15", entries[0].Time())
	assert.NotEmpty(t, entries[0].ID)
}

func TestFinishValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"missing name", "/finish?stroke=Fly&distance=25m", "name is required"},
		{"blank name", "/finish?name=%20%20&stroke=Fly", "name is required"},
		{"long name", "/finish?name=" + strings.Repeat("a", maxNameLength+1), "name too long"},
		{"long distance", "/finish?name=Bob&distance=" + strings.Repeat("9", maxDistanceLength+1), "distance too long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
	assert.Equal(t, 0, env.store.Len())
}

func TestClear(t *testing.T) {
	env := newTestEnv(t)
	env.store.Add(results.Entry{Name: "Alice"})

	rec := env.do(t, http.MethodGet, "/clear")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, 1, env.store.Len())

	rec = env.do(t, http.MethodPost, "/clear")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, env.store.Len())
	assert.Contains(t, env.do(t, http.MethodGet, "/").Body.String(), `<div id="results"></div>`)
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t)
	env.store.Add(results.Entry{Name: "Alice", Stroke: "Back", Distance: "100m", Elapsed: 90 * time.Second})

	rec := env.do(t, http.MethodGet, "/download")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="results.csv"`, rec.Header().Get("Content-Disposition"))

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Alice", "", "Back", "100m", "1:30:00"}, rows[1][:5])
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/index.html").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/nope").Code)
}

func TestWebSocketFeed(t *testing.T) {
	env := newTestEnv(t)
	env.store.Add(results.Entry{Name: "Alice"})

	ts := httptest.NewServer(env.handler)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var status types.WSStatus
	require.NoError(t, conn.ReadJSON(&status))
	assert.Equal(t, "status", status.Type)
	assert.Equal(t, 1, status.ResultCount)
	assert.Equal(t, "dev", status.Version.Current)
	assert.False(t, status.Stopwatch.Running)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "start"}))

	// Time messages interleave with status updates; wait for the running status.
	for {
		var msg struct {
			Type      string          `json:"type"`
			Stopwatch stopwatch.State `json:"stopwatch"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "status" && msg.Stopwatch.Running {
			break
		}
	}
	assert.True(t, env.watch.Running())

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "clear"}))
	for {
		var msg types.WSStatus
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "status" && msg.ResultCount == 0 {
			break
		}
	}
	assert.Equal(t, 0, env.store.Len())
}
