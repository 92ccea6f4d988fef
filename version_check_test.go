package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestVersionChecker(t *testing.T, handler http.HandlerFunc) *VersionChecker {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	vc := NewVersionChecker()
	vc.releaseURL = ts.URL
	vc.client = ts.Client()
	return vc
}

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"1.2.0", "1.1.9", true},
		{"v1.10.0", "1.9.0", true},
		{"1.1.0", "1.1.0", false},
		{"1.0.0", "1.1.0", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isNewerVersion(tt.latest, tt.current), "%s vs %s", tt.latest, tt.current)
	}
}

func TestNormalizeVersion(t *testing.T) {
	assert.Equal(t, "1.2.3", normalizeVersion(" v1.2.3 "))
	assert.Equal(t, "v1.2.3", canonicalVersion("1.2.3"))
}

func TestCheckStoresLatestRelease(t *testing.T) {
	var (
		mu             sync.Mutex
		gotIfNoneMatch []string
	)
	vc := newTestVersionChecker(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotIfNoneMatch = append(gotIfNoneMatch, r.Header.Get("If-None-Match"))
		mu.Unlock()
		if r.Header.Get("If-None-Match") == `"abc"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"abc"`)
		_, _ = w.Write([]byte(`{"tag_name":"v2.0.0"}`))
	})

	assert.True(t, vc.check(context.Background()))
	assert.Equal(t, "2.0.0", vc.Info().Latest)

	assert.True(t, vc.check(context.Background()))
	mu.Lock()
	assert.Equal(t, []string{"", `"abc"`}, gotIfNoneMatch)
	mu.Unlock()
	assert.Equal(t, "2.0.0", vc.Info().Latest)
}

func TestCheckStatusHandling(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"no releases", http.StatusNotFound, "", true},
		{"rate limited", http.StatusTooManyRequests, "", false},
		{"server error", http.StatusBadGateway, "", false},
		{"client error", http.StatusBadRequest, "", true},
		{"prerelease", http.StatusOK, `{"tag_name":"v3.0.0-rc1","prerelease":true}`, true},
		{"empty tag", http.StatusOK, `{"tag_name":""}`, false},
		{"bad json", http.StatusOK, `{`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vc := newTestVersionChecker(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			assert.Equal(t, tt.want, vc.check(context.Background()))
			assert.Empty(t, vc.Info().Latest)
		})
	}
}

func TestInfoForDevBuild(t *testing.T) {
	vc := &VersionChecker{latest: "9.9.9"}
	info := vc.Info()
	assert.Equal(t, "dev", info.Current)
	assert.False(t, info.UpdateAvail)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		NewVersionChecker().Run(ctx)
		close(done)
	}()
	<-done
}
