package tui

import (
	"context"
	"errors"
	"time"

	"github.com/existflow/neocount/internal/auth"
	"github.com/existflow/neocount/internal/countdown"
	"github.com/existflow/neocount/internal/eventlist"
	"github.com/existflow/neocount/internal/logger"
	"github.com/existflow/neocount/internal/model"
	"github.com/existflow/neocount/internal/store"
)

// Screen represents which top-level screen is shown
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenAuth
	ScreenGrid
)

// Mode represents the current UI mode on the grid
type Mode int

const (
	ModeNormal Mode = iota
	ModeDrawer
	ModeConfirmDelete
	ModeHelp
)

// StoreOpener builds the event store for a signed-in session
type StoreOpener func(ctx context.Context, session *auth.Session) (store.Store, error)

// Options wires the model to its collaborators
type Options struct {
	Events        *eventlist.List
	Hub           *countdown.Hub
	Gate          *auth.Gate  // nil when no identity provider is configured
	OpenStore     StoreOpener // required with Gate
	ConfirmDelete bool
	RedirectURL   string
	Now           func() time.Time
}

// timeUpdate is one countdown render pushed by a display timer
type timeUpdate struct {
	id   string
	left countdown.TimeLeft
}

// Model is the main TUI model
type Model struct {
	events *eventlist.List
	hub    *countdown.Hub
	gate   *auth.Gate
	open   StoreOpener
	now    func() time.Time

	confirmDelete bool
	redirectURL   string

	// Display timers, one per shown event
	subs      map[string]*countdown.Subscription
	times     map[string]countdown.TimeLeft
	timesChan chan timeUpdate

	// Auth state changes from the gate
	authChan    chan auth.State
	unsubscribe func()

	// UI state
	width  int
	height int
	screen Screen
	mode   Mode
	cursor int

	login  *authForm
	drawer *drawer

	message string
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	logger.Info("Initializing TUI model")

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	hub := opts.Hub
	if hub == nil {
		hub = countdown.NewHub(countdown.DefaultInterval)
	}

	m := Model{
		events:        opts.Events,
		hub:           hub,
		gate:          opts.Gate,
		open:          opts.OpenStore,
		now:           now,
		confirmDelete: opts.ConfirmDelete,
		redirectURL:   opts.RedirectURL,
		subs:          make(map[string]*countdown.Subscription),
		times:         make(map[string]countdown.TimeLeft),
		timesChan:     make(chan timeUpdate, 256), // Buffered to avoid blocking timers
		authChan:      make(chan auth.State, 4),
		screen:        ScreenGrid,
		login:         newAuthForm(),
	}
	if m.events == nil {
		m.events = eventlist.New(nil)
	}

	if m.gate != nil {
		m.screen = ScreenLoading
		// Signal the UI on every auth transition, dropping if one is pending
		m.unsubscribe = m.gate.Subscribe(func(state auth.State, _ *auth.Session) {
			select {
			case m.authChan <- state:
			default:
			}
		})
	} else {
		m.loadData()
	}

	return m
}

// loadData refreshes the event list and re-binds the display timers
func (m *Model) loadData() {
	if err := m.events.Refresh(context.Background()); err != nil {
		logger.Error("Failed to load events", logger.F("error", err.Error()))
		if !errors.Is(err, store.ErrNoUser) {
			m.message = "Error: " + err.Error()
		}
	}
	m.bindTimers()

	if m.cursor >= m.events.Len() {
		m.cursor = max(0, m.events.Len()-1)
	}
}

// bindTimers subscribes every listed event and releases timers of events that
// are gone or whose target moved
func (m *Model) bindTimers() {
	listed := make(map[string]model.Event)
	for _, e := range m.events.Events() {
		listed[e.ID] = e
	}

	for id, sub := range m.subs {
		e, ok := listed[id]
		if ok && sub.Target().Equal(e.TargetDate) {
			continue
		}
		sub.Release()
		delete(m.subs, id)
		delete(m.times, id)
	}

	for id, e := range listed {
		if _, ok := m.subs[id]; ok {
			continue
		}
		m.subs[id] = m.hub.Subscribe(e.TargetDate, func(t countdown.TimeLeft) {
			select {
			case m.timesChan <- timeUpdate{id: id, left: t}:
			default:
				// UI is behind, the next tick catches up
			}
		})
	}
}

// releaseTimers stops every display timer
func (m *Model) releaseTimers() {
	for id, sub := range m.subs {
		sub.Release()
		delete(m.subs, id)
	}
	for id := range m.times {
		delete(m.times, id)
	}
}

// Close releases everything the model holds
func (m *Model) Close() {
	m.releaseTimers()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// currentEvent returns the event under the cursor
func (m *Model) currentEvent() *model.Event {
	events := m.events.Events()
	if m.cursor < 0 || m.cursor >= len(events) {
		return nil
	}
	return &events[m.cursor]
}

// timeLeft returns the last pushed render for an event, computing one if the
// timer has not reported yet
func (m *Model) timeLeft(e model.Event) countdown.TimeLeft {
	if t, ok := m.times[e.ID]; ok {
		return t
	}
	return countdown.Calculate(e.TargetDate, m.now())
}
