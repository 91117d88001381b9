// Package notify fires the daily reminder. Delivery is best effort: a missing
// or refused notification facility is a silent no-op.
package notify

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/existflow/neocount/internal/logger"
)

// Permission is the host's answer to "may we notify"
type Permission int

const (
	PermissionDefault Permission = iota
	PermissionGranted
	PermissionDenied
	PermissionUnsupported
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	case PermissionUnsupported:
		return "unsupported"
	default:
		return "default"
	}
}

// Notifier shows one local notification
type Notifier interface {
	Permission() Permission
	// Request asks the host for permission and returns the outcome
	Request(ctx context.Context) Permission
	Notify(ctx context.Context, title, body string) error
}

// Desktop notifies through notify-send
type Desktop struct {
	path string
}

// NewDesktop looks up notify-send on PATH
func NewDesktop() *Desktop {
	path, err := exec.LookPath("notify-send")
	if err != nil {
		logger.Debug("notify-send not found", logger.F("error", err.Error()))
		return &Desktop{}
	}
	return &Desktop{path: path}
}

func (d *Desktop) Permission() Permission {
	if d.path == "" {
		return PermissionUnsupported
	}
	return PermissionGranted
}

// Request has nothing to ask on a desktop session
func (d *Desktop) Request(ctx context.Context) Permission {
	return d.Permission()
}

func (d *Desktop) Notify(ctx context.Context, title, body string) error {
	if d.path == "" {
		return nil
	}
	out, err := exec.CommandContext(ctx, d.path, "--app-name=NeoCount", title, body).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to notify: %w: %s", err, out)
	}
	return nil
}

// LogNotifier writes notifications to the log, for headless hosts
type LogNotifier struct{}

func (LogNotifier) Permission() Permission {
	return PermissionGranted
}

func (LogNotifier) Request(ctx context.Context) Permission {
	return PermissionGranted
}

func (LogNotifier) Notify(ctx context.Context, title, body string) error {
	logger.Info("Notification", logger.F("title", title), logger.F("body", body))
	return nil
}
