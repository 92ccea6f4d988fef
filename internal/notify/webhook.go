package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oszuidwest/swim-stopwatch/internal/results"
	"github.com/oszuidwest/swim-stopwatch/internal/util"
)

// webhookTimeout bounds a single webhook delivery.
const webhookTimeout = 10 * time.Second

// SendResultWebhook posts a newly recorded result to the webhook URL.
func SendResultWebhook(webhookURL string, e *results.Entry) error {
	return sendWebhook(webhookURL, map[string]any{
		"event":       "result_recorded",
		"id":          e.ID,
		"name":        e.Name,
		"pool":        e.Pool,
		"stroke":      e.Stroke,
		"distance":    e.Distance,
		"time":        e.Time(),
		"elapsed_ms":  e.Elapsed.Milliseconds(),
		"recorded_at": e.RecordedAt.Format(time.RFC3339),
		"timestamp":   util.RFC3339Now(),
	})
}

// SendClearedWebhook posts the number of results removed by a clear.
func SendClearedWebhook(webhookURL string, count int) error {
	return sendWebhook(webhookURL, map[string]any{
		"event":     "results_cleared",
		"count":     count,
		"timestamp": util.RFC3339Now(),
	})
}

// sendWebhook sends a POST request with JSON payload to the webhook URL.
func sendWebhook(webhookURL string, payload map[string]any) error {
	if !util.IsConfigured(webhookURL) {
		return nil
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return util.WrapError("marshal payload", err)
	}

	client := &http.Client{Timeout: webhookTimeout}
	resp, err := client.Post(webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return util.WrapError("send webhook request", err)
	}
	defer util.SafeCloseFunc(resp.Body, "webhook response body")()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
