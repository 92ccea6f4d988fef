package notify

import (
	"encoding/json"
	"os"

	"github.com/oszuidwest/swim-stopwatch/internal/results"
	"github.com/oszuidwest/swim-stopwatch/internal/util"
)

// EventLogEntry is one line of the JSONL event log.
type EventLogEntry struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Name      string `json:"name,omitempty"`
	Pool      string `json:"pool,omitempty"`
	Stroke    string `json:"stroke,omitempty"`
	Distance  string `json:"distance,omitempty"`
	Time      string `json:"time,omitempty"`
	Count     int    `json:"count,omitempty"`
}

// LogResult appends a recorded result to the event log.
func LogResult(logPath string, e *results.Entry) error {
	return appendLogEntry(logPath, EventLogEntry{
		Timestamp: util.RFC3339Now(),
		Event:     "result_recorded",
		Name:      e.Name,
		Pool:      e.Pool,
		Stroke:    e.Stroke,
		Distance:  e.Distance,
		Time:      e.Time(),
	})
}

// LogCleared appends a clear event to the event log.
func LogCleared(logPath string, count int) error {
	return appendLogEntry(logPath, EventLogEntry{
		Timestamp: util.RFC3339Now(),
		Event:     "results_cleared",
		Count:     count,
	})
}

// appendLogEntry appends a JSON log entry to the file.
func appendLogEntry(logPath string, entry EventLogEntry) error {
	if !util.IsConfigured(logPath) {
		return nil
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return util.WrapError("marshal log entry", err)
	}
	jsonData = append(jsonData, '\n')

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return util.WrapError("open log file", err)
	}
	defer util.SafeCloseFunc(f, "log file")()

	if _, err := f.Write(jsonData); err != nil {
		return util.WrapError("write log entry", err)
	}

	return nil
}
