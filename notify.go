package main

// This file defines pluggable notifiers fired when the node's observed state
// changes.

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// defaultSMTPTimeout bounds a whole mail exchange when no timeout is set.
const defaultSMTPTimeout = 10 * time.Second

// EventKind says which part of the node's state changed.
type EventKind string

const (
	EventOrientation EventKind = "orientation"
	EventDemand      EventKind = "demand"
)

// Event describes one state transition observed by the poller.
type Event struct {
	Kind        EventKind
	Orientation Orientation // new orientation for EventOrientation
	Previous    Orientation
	Demand      bool // new demand state for EventDemand
}

func (e Event) String() string {
	if e.Kind == EventDemand {
		if e.Demand {
			return "demand asserted"
		}
		return "demand withdrawn"
	}
	return fmt.Sprintf("orientation %s -> %s", e.Previous, e.Orientation)
}

// Notifier delivers an Event somewhere.  If an error is returned the caller
// logs it and carries on.
type Notifier interface {
	Name() string
	Notify(ev Event, logger *slog.Logger) error
}

// LogNotifier records events in the application log.  It is the default when
// no notifiers are configured.
type LogNotifier struct{}

// Name returns the type name of the notifier.
func (LogNotifier) Name() string { return "log" }

// Notify writes the event to the logger.
func (LogNotifier) Notify(ev Event, logger *slog.Logger) error {
	logger.Info("state change", "kind", string(ev.Kind), "event", ev.String())
	return nil
}

// EmailNotifier sends a mail through an SMTP server.  The subject defaults
// to "nodehal event" if empty.  Timeout bounds the dial and the whole
// exchange; zero means defaultSMTPTimeout.
type EmailNotifier struct {
	SMTPServer string
	SMTPPort   int
	Username   string
	Password   string
	From       string
	To         string
	Subject    string
	Timeout    time.Duration
}

// Name returns the type name of the notifier.
func (EmailNotifier) Name() string { return "email" }

// Notify dispatches a plaintext mail describing the event.  STARTTLS and
// PLAIN auth are used when the server offers them.
func (e EmailNotifier) Notify(ev Event, logger *slog.Logger) error {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	addr := net.JoinHostPort(e.SMTPServer, strconv.Itoa(e.SMTPPort))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}

	c, err := smtp.NewClient(conn, e.SMTPServer)
	if err != nil {
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: e.SMTPServer}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if e.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", e.Username, e.Password, e.SMTPServer)); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	if err := c.Mail(e.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(e.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(e.message(ev)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return c.Quit()
}

// message composes the mail.  RFC 5322 requires CRLF line endings.
func (e EmailNotifier) message(ev Event) []byte {
	subject := e.Subject
	if subject == "" {
		subject = "nodehal event"
	}
	return []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s\r\n", e.To, subject, ev))
}

// initNotifiers builds notifiers from configuration.  Unknown types are
// skipped; if nothing usable remains a LogNotifier is returned so changes
// are always recorded.
func initNotifiers(cfgs []NotifierConfig) []Notifier {
	var ns []Notifier
	for _, nc := range cfgs {
		switch strings.ToLower(nc.Type) {
		case "log":
			ns = append(ns, LogNotifier{})
		case "email":
			ns = append(ns, EmailNotifier{
				SMTPServer: nc.SMTPServer,
				SMTPPort:   nc.SMTPPort,
				Username:   nc.Username,
				Password:   nc.Password,
				From:       nc.From,
				To:         nc.To,
				Subject:    nc.Subject,
				Timeout:    time.Duration(nc.TimeoutMS) * time.Millisecond,
			})
		}
	}
	if len(ns) == 0 {
		ns = append(ns, LogNotifier{})
	}
	return ns
}
