// Package notify delivers result notifications by webhook, event log and email.
package notify

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/oszuidwest/swim-stopwatch/internal/results"
	"github.com/oszuidwest/swim-stopwatch/internal/util"
	"github.com/wneessen/go-mail"
)

// csvAttachmentName is the file name of the results attachment.
const csvAttachmentName = "results.csv"

// errNoRecipients is returned when the recipient list holds no addresses.
var errNoRecipients = errors.New("no valid recipients")

// EmailConfig contains SMTP server settings for email notifications.
type EmailConfig struct {
	Host       string
	Port       int
	FromName   string
	Username   string
	Password   string
	Recipients string
}

// SendResultsEmail mails a summary of entries with a CSV attachment.
// It does nothing when SMTP is not configured or there are no entries.
func SendResultsEmail(cfg *EmailConfig, entries []results.Entry) error {
	if !util.IsConfigured(cfg.Host, cfg.Username, cfg.Recipients) || len(entries) == 0 {
		return nil
	}

	m, err := newResultsMessage(cfg, entries)
	if err != nil {
		return err
	}
	return sendEmail(cfg, m)
}

// newResultsMessage builds the results email.
func newResultsMessage(cfg *EmailConfig, entries []results.Entry) (*mail.Msg, error) {
	recipients := parseRecipients(cfg.Recipients)
	if len(recipients) == 0 {
		return nil, errNoRecipients
	}

	m := mail.NewMsg()
	if cfg.FromName != "" {
		if err := m.FromFormat(cfg.FromName, cfg.Username); err != nil {
			return nil, util.WrapError("set from address", err)
		}
	} else {
		if err := m.From(cfg.Username); err != nil {
			return nil, util.WrapError("set from address", err)
		}
	}
	if err := m.To(recipients...); err != nil {
		return nil, util.WrapError("set recipient address", err)
	}

	m.Subject(fmt.Sprintf("[RESULTS] %d recorded times - Swim Stopwatch", len(entries)))
	m.SetBodyString(mail.TypeTextPlain, resultsBody(entries))

	var csvData bytes.Buffer
	if err := results.WriteCSV(&csvData, entries); err != nil {
		return nil, err
	}
	if err := m.AttachReader(csvAttachmentName, &csvData); err != nil {
		return nil, util.WrapError("attach results", err)
	}

	return m, nil
}

// resultsBody renders the plain-text summary, oldest entry first.
func resultsBody(entries []results.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Results cleared from the stopwatch at %s.\n\n", util.HumanTime())
	for i := range entries {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, entries[i].Line())
	}
	b.WriteString("\nThe full list is attached as " + csvAttachmentName + ".")
	return b.String()
}

// parseRecipients splits a comma-separated address list.
func parseRecipients(list string) []string {
	var recipients []string
	for _, r := range strings.Split(list, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return recipients
}

// sendEmail delivers m using port-appropriate TLS settings.
func sendEmail(cfg *EmailConfig, m *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}

	switch cfg.Port {
	case 465: // SMTPS - implicit TLS
		opts = append(opts, mail.WithSSL())
	case 587: // Submission - STARTTLS required
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	default: // Port 25 or custom - opportunistic TLS
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}

	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return util.WrapError("create SMTP client", err)
	}

	if err := c.DialAndSend(m); err != nil {
		return util.WrapError("send email", err)
	}

	return nil
}
