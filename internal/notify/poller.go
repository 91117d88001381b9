package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/existflow/neocount/internal/logger"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule is the poll cadence
const DefaultSchedule = "@every 60s"

const (
	defaultTitle = "NeoCount"
	defaultBody  = "Time is ticking! Check your countdowns."
)

// Ledger remembers the days a reminder already fired. *db.DB satisfies it.
type Ledger interface {
	NotificationFired(ctx context.Context, day string) (bool, error)
	MarkNotificationFired(ctx context.Context, day string, at time.Time) error
}

// MessageFunc builds the reminder text at fire time
type MessageFunc func(ctx context.Context) (title, body string)

// Options configures a Poller
type Options struct {
	Hour     int
	Minute   int
	Schedule string      // cron spec, DefaultSchedule when empty
	Ledger   Ledger      // nil fires on every matching check
	Message  MessageFunc // nil uses a generic reminder
}

// Poller checks the wall clock on a schedule and notifies when it matches the
// configured time of day. Without a ledger nothing stops a second fire in the
// same minute or a miss when the poll skips the minute.
type Poller struct {
	notifier Notifier
	opts     Options
	now      func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// NewPoller validates the time of day
func NewPoller(n Notifier, opts Options) (*Poller, error) {
	if opts.Hour < 0 || opts.Hour > 23 || opts.Minute < 0 || opts.Minute > 59 {
		return nil, fmt.Errorf("invalid notification time %02d:%02d", opts.Hour, opts.Minute)
	}
	if opts.Schedule == "" {
		opts.Schedule = DefaultSchedule
	}
	return &Poller{notifier: n, opts: opts, now: time.Now}, nil
}

// SetClock overrides the wall clock
func (p *Poller) SetClock(now func() time.Time) {
	p.now = now
}

// Check fires the reminder if the local time matches. It reports whether a
// notification was shown.
func (p *Poller) Check(ctx context.Context) (bool, error) {
	now := p.now()
	if now.Hour() != p.opts.Hour || now.Minute() != p.opts.Minute {
		return false, nil
	}

	if perm := p.notifier.Permission(); perm != PermissionGranted {
		logger.Debug("Notification skipped", logger.F("permission", perm.String()))
		return false, nil
	}

	day := now.Format("2006-01-02")
	if p.opts.Ledger != nil {
		fired, err := p.opts.Ledger.NotificationFired(ctx, day)
		if err != nil {
			return false, fmt.Errorf("failed to read notification ledger: %w", err)
		}
		if fired {
			return false, nil
		}
	}

	title, body := defaultTitle, defaultBody
	if p.opts.Message != nil {
		title, body = p.opts.Message(ctx)
	}
	if err := p.notifier.Notify(ctx, title, body); err != nil {
		return false, err
	}

	if p.opts.Ledger != nil {
		if err := p.opts.Ledger.MarkNotificationFired(ctx, day, now); err != nil {
			return true, fmt.Errorf("failed to record notification: %w", err)
		}
	}

	logger.Info("Notification fired", logger.F("day", day))
	return true, nil
}

// Start asks for permission once and begins polling. Denied or unsupported
// permission still starts the poller; each check is then a no-op.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cron != nil {
		return nil
	}

	if p.notifier.Permission() == PermissionDefault {
		perm := p.notifier.Request(ctx)
		logger.Info("Notification permission", logger.F("permission", perm.String()))
	}

	c := cron.New(
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)
	_, err := c.AddFunc(p.opts.Schedule, func() {
		if _, err := p.Check(ctx); err != nil {
			logger.Warn("Notification check failed", logger.F("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid notification schedule %q: %w", p.opts.Schedule, err)
	}

	c.Start()
	p.cron = c
	logger.Info("Notification poller started",
		logger.F("at", fmt.Sprintf("%02d:%02d", p.opts.Hour, p.opts.Minute)),
		logger.F("schedule", p.opts.Schedule),
	)
	return nil
}

// Stop halts polling and waits for a running check to finish
func (p *Poller) Stop() {
	p.mu.Lock()
	c := p.cron
	p.cron = nil
	p.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// cronLogger routes cron's own messages into the app log
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, pairs(keysAndValues)...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := append(pairs(keysAndValues), logger.F("error", err.Error()))
	logger.Error("cron: "+msg, fields...)
}

func pairs(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.F(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
