package notify

import (
	"sync"

	"github.com/oszuidwest/swim-stopwatch/internal/config"
	"github.com/oszuidwest/swim-stopwatch/internal/results"
	"github.com/oszuidwest/swim-stopwatch/internal/util"
)

// Notifier fans result events out to the configured channels.
// Deliveries run in the background so request handlers never wait on
// a webhook or SMTP server.
type Notifier struct {
	cfg *config.Config
	wg  sync.WaitGroup
}

// NewNotifier returns a Notifier configured with the given config.
func NewNotifier(cfg *config.Config) *Notifier {
	return &Notifier{cfg: cfg}
}

// ResultRecorded notifies that e was added to the results.
func (n *Notifier) ResultRecorded(e results.Entry) {
	cfg := n.cfg.Snapshot()

	if cfg.HasWebhook() {
		n.send("Result webhook", func() error { return SendResultWebhook(cfg.WebhookURL, &e) })
	}
	if cfg.HasLogPath() {
		n.send("Result log", func() error { return LogResult(cfg.LogPath, &e) })
	}
}

// ResultsCleared notifies that removed were cleared from the results.
// The removed entries are mailed so a clear never loses a session's times.
func (n *Notifier) ResultsCleared(removed []results.Entry) {
	cfg := n.cfg.Snapshot()
	count := len(removed)

	if cfg.HasWebhook() {
		n.send("Clear webhook", func() error { return SendClearedWebhook(cfg.WebhookURL, count) })
	}
	if cfg.HasLogPath() {
		n.send("Clear log", func() error { return LogCleared(cfg.LogPath, count) })
	}
	if cfg.HasEmail() && count > 0 {
		emailCfg := &EmailConfig{
			Host:       cfg.EmailSMTPHost,
			Port:       cfg.EmailSMTPPort,
			FromName:   cfg.EmailFromName,
			Username:   cfg.EmailUsername,
			Password:   cfg.EmailPassword,
			Recipients: cfg.EmailRecipients,
		}
		n.send("Results email", func() error { return SendResultsEmail(emailCfg, removed) })
	}
}

// Wait blocks until all pending notifications have finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// send runs fn in the background and logs its outcome.
func (n *Notifier) send(notifyType string, fn func() error) {
	n.wg.Go(func() {
		util.LogNotifyResult(fn, notifyType)
	})
}
