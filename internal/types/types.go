// Package types provides shared type definitions used across the stopwatch.
package types

import (
	"time"

	"github.com/oszuidwest/swim-stopwatch/internal/stopwatch"
)

// Live feed intervals.
const (
	TimeInterval   = 100 * time.Millisecond // Time message rate for scoreboards
	StatusInterval = 3 * time.Second
)

// VersionInfo describes the running build and the latest published release.
type VersionInfo struct {
	Current     string `json:"current"`
	Latest      string `json:"latest,omitzero"`
	UpdateAvail bool   `json:"update_available"`
	Commit      string `json:"commit,omitzero"`
	BuildTime   string `json:"build_time,omitzero"`
}

// WSTime is the periodic time message sent to live feed clients.
type WSTime struct {
	Type string `json:"type"`
	stopwatch.State
}

// WSStatus summarizes the device for live feed clients.
type WSStatus struct {
	Type        string          `json:"type"`
	Stopwatch   stopwatch.State `json:"stopwatch"`
	ResultCount int             `json:"result_count"`
	Version     VersionInfo     `json:"version"`
}
