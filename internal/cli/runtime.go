package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/neocount/internal/auth"
	"github.com/existflow/neocount/internal/config"
	"github.com/existflow/neocount/internal/countdown"
	"github.com/existflow/neocount/internal/db"
	"github.com/existflow/neocount/internal/logger"
	"github.com/existflow/neocount/internal/model"
	"github.com/existflow/neocount/internal/notify"
	"github.com/existflow/neocount/internal/store"
)

var (
	errIdentityNotConfigured = errors.New("identity provider not configured (set identity.url in ~/.neocount/config.yaml or NEOCOUNT_IDENTITY_URL)")
	errNotSignedIn           = errors.New("not signed in, run: neocount auth login")
)

// runtime holds what commands need to reach the user's events
type runtime struct {
	cfg    *config.Config
	db     *db.DB     // local slot and notification ledger
	gate   *auth.Gate // nil without an identity provider
	remote *sql.DB    // opened on first remote use
}

func openRuntime(c *config.Config) (*runtime, error) {
	database, err := db.Open(c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	rt := &runtime{cfg: c, db: database}
	if c.Identity.URL != "" {
		path, err := auth.DefaultSessionPath()
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to locate session: %w", err)
		}
		rt.gate = auth.NewGate(auth.NewGoTrue(c.Identity.URL, c.Identity.AnonKey), auth.NewFileSessionStore(path))
	}
	return rt, nil
}

// Close releases the databases
func (r *runtime) Close() {
	if r.remote != nil {
		_ = r.remote.Close()
	}
	if err := r.db.Close(); err != nil {
		logger.Warn("Failed to close database", logger.F("error", err))
	}
	logger.Debug("Database closed")
}

// openStore returns the local slot, or the signed-in user's rows of the hosted
// table in remote mode
func (r *runtime) openStore(ctx context.Context, session *auth.Session) (store.Store, error) {
	if !r.cfg.IsRemote() {
		return store.OpenLocal(ctx, r.db)
	}
	if session == nil || session.UserID == "" {
		return nil, store.ErrNoUser
	}
	if r.cfg.RemoteURL == "" {
		return nil, errors.New("remote storage needs remote_url in ~/.neocount/config.yaml")
	}
	if r.remote == nil {
		conn, err := store.OpenPostgres(r.cfg.RemoteURL)
		if err != nil {
			return nil, err
		}
		r.remote = conn
	}
	return store.NewRemote(r.remote, session.UserID), nil
}

// store resolves the event store for a one-shot command, restoring the saved
// session in remote mode
func (r *runtime) store(ctx context.Context) (store.Store, error) {
	if !r.cfg.IsRemote() {
		return r.openStore(ctx, nil)
	}
	if r.gate == nil {
		return nil, errIdentityNotConfigured
	}
	if r.gate.Bootstrap(ctx) != auth.SignedIn {
		return nil, errNotSignedIn
	}
	return r.openStore(ctx, r.gate.Session())
}

// newPoller builds the daily reminder from config. events supplies the list
// the reminder text is built from.
func (r *runtime) newPoller(events func() []model.Event) (*notify.Poller, error) {
	hour, minute, err := r.cfg.Notify.Clock()
	if err != nil {
		return nil, err
	}
	every, err := r.cfg.Notify.Interval()
	if err != nil {
		return nil, err
	}

	opts := notify.Options{
		Hour:     hour,
		Minute:   minute,
		Schedule: "@every " + every.String(),
		Message: func(ctx context.Context) (string, string) {
			return reminderText(events(), time.Now())
		},
	}
	if r.cfg.Notify.DedupeDaily {
		opts.Ledger = r.db
	}

	var n notify.Notifier = notify.NewDesktop()
	if n.Permission() == notify.PermissionUnsupported {
		logger.Info("Desktop notifications unsupported, reminders go to the log")
		n = notify.LogNotifier{}
	}
	return notify.NewPoller(n, opts)
}

// reminderText summarizes the countdowns still running
func reminderText(events []model.Event, now time.Time) (string, string) {
	var next *model.Event
	running := 0
	for i, e := range events {
		if countdown.Calculate(e.TargetDate, now).IsPast {
			continue
		}
		running++
		if next == nil {
			next = &events[i]
		}
	}

	if next == nil {
		return "NeoCount", "Time is ticking! Check your countdowns."
	}
	left := countdown.Calculate(next.TargetDate, now)
	body := fmt.Sprintf("%s %s in %dd %dh", next.Icon, next.Name, left.Days, left.Hours)
	if running > 1 {
		body += fmt.Sprintf(" (+%d more)", running-1)
	}
	return "NeoCount", body
}
