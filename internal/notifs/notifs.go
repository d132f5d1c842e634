// Package notifs reports background job outcomes to a chat webhook.
package notifs

import (
	"fmt"
	"log/slog"
	"strings"
)

type Notify interface {
	JobNotif(job string, summary string, details []string)
	ErrNotif(job string, err error)
}

type Notif struct {
	info  Provider
	alert Provider
	log   *slog.Logger
}

// NewNotif returns a Discord backed notifier, or one that only logs when
// webhook is empty.
func NewNotif(webhook string, log *slog.Logger) Notify {
	if log == nil {
		log = slog.Default()
	}
	if webhook == "" {
		return Nop{log: log}
	}
	return &Notif{
		info:  NewDiscord(webhook, colorInfo, log),
		alert: NewDiscord(webhook, colorError, log),
		log:   log,
	}
}

func (n *Notif) JobNotif(job string, summary string, details []string) {
	n.log.Info("job finished", "job", job, "summary", summary)
	n.info.SendMessage(job, summary, "Details:", detailText(details))
}

func (n *Notif) ErrNotif(job string, err error) {
	n.log.Error("job failed", "job", job, "err", err)
	n.alert.SendMessage(job, "Job failed", "Error:", err.Error())
}

func detailText(details []string) string {
	if len(details) == 0 {
		return "-"
	}
	return strings.Join(details, "\n")
}

// Nop logs notifications without delivering them anywhere.
type Nop struct {
	log *slog.Logger
}

func (n Nop) JobNotif(job string, summary string, details []string) {
	n.logger().Info("job finished", "job", job, "summary", summary, "details", len(details))
}

func (n Nop) ErrNotif(job string, err error) {
	n.logger().Error("job failed", "job", job, "err", fmt.Sprint(err))
}

func (n Nop) logger() *slog.Logger {
	if n.log == nil {
		return slog.Default()
	}
	return n.log
}
