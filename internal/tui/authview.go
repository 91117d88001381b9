package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/neocount/internal/auth"
	"github.com/existflow/neocount/internal/logger"
)

const authTimeout = 15 * time.Second

// authForm is the sign in / sign up screen state
type authForm struct {
	signUp   bool
	focus    int // 0 email, 1 password
	email    textinput.Model
	password textinput.Model
	busy     bool
	err      string
	success  string
}

// authStateMsg is sent when the gate changes state
type authStateMsg auth.State

// authResultMsg carries the outcome of a sign in or sign up
type authResultMsg struct {
	message string
	err     error
}

func newAuthForm() *authForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Width = 36
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 36
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &authForm{email: email, password: password}
}

func (f *authForm) setFocus(i int) {
	f.focus = i
	if i == 0 {
		f.email.Focus()
		f.password.Blur()
	} else {
		f.password.Focus()
		f.email.Blur()
	}
}

// reset clears the form after a sign out
func (f *authForm) reset() {
	f.email.SetValue("")
	f.password.SetValue("")
	f.busy = false
	f.err = ""
	f.success = ""
	f.setFocus(0)
}

// waitForAuth listens for gate transitions
func (m Model) waitForAuth() tea.Cmd {
	if m.gate == nil {
		return nil
	}
	return func() tea.Msg {
		return authStateMsg(<-m.authChan)
	}
}

// bootstrapCmd resolves the persisted session off the update loop
func (m Model) bootstrapCmd() tea.Cmd {
	if m.gate == nil {
		return nil
	}
	gate := m.gate
	return func() tea.Msg {
		gate.Bootstrap(context.Background())
		return nil
	}
}

// handleAuthState reacts to a gate transition
func (m Model) handleAuthState(state auth.State) (tea.Model, tea.Cmd) {
	switch state {
	case auth.Loading:
		m.screen = ScreenLoading
	case auth.SignedIn:
		session := m.gate.Session()
		st, err := m.open(context.Background(), session)
		if err != nil {
			logger.Error("Failed to open store", logger.F("error", err.Error()))
			m.login.err = "Could not open your events: " + err.Error()
			m.screen = ScreenAuth
			break
		}
		m.events.SetStore(st)
		m.login.reset()
		m.screen = ScreenGrid
		m.mode = ModeNormal
		m.cursor = 0
		m.loadData()
		if session != nil {
			m.message = "Signed in as " + session.Email
		}
	case auth.SignedOut:
		m.releaseTimers()
		m.events.Clear()
		if m.drawer != nil {
			m.drawer.flow.Close()
			m.drawer = nil
		}
		m.mode = ModeNormal
		m.cursor = 0
		m.login.busy = false
		m.screen = ScreenAuth
	}
	return m, m.waitForAuth()
}

// updateAuth handles keys on the auth screen
func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.login
	if f.busy {
		return m, nil
	}

	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, keys.Toggle):
		f.signUp = !f.signUp
		f.err = ""
		f.success = ""
		return m, nil
	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.BackTab),
		msg.Type == tea.KeyUp, msg.Type == tea.KeyDown:
		f.setFocus(1 - f.focus)
		return m, nil
	case msg.Type == tea.KeyEnter:
		if f.focus == 0 {
			f.setFocus(1)
			return m, nil
		}
		return m, m.submitAuth()
	}

	var cmd tea.Cmd
	if f.focus == 0 {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return m, cmd
}

// submitAuth runs sign in or sign up against the provider
func (m Model) submitAuth() tea.Cmd {
	f := m.login
	email := strings.TrimSpace(f.email.Value())
	password := f.password.Value()
	if email == "" || password == "" {
		f.err = auth.ErrCredentialsRequired.Error()
		return nil
	}

	f.busy = true
	f.err = ""
	f.success = ""
	gate := m.gate
	signUp := f.signUp
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()
		if signUp {
			message, err := gate.SignUp(ctx, email, password)
			return authResultMsg{message: message, err: err}
		}
		return authResultMsg{err: gate.SignIn(ctx, email, password)}
	}
}

// handleAuthResult shows the outcome inline. A successful sign in arrives
// separately as a gate transition.
func (m Model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	f := m.login
	f.busy = false
	if msg.err != nil {
		f.err = describeAuthError(msg.err)
		return m, nil
	}
	if msg.message != "" {
		f.success = msg.message
		f.signUp = false
		f.password.SetValue("")
		f.setFocus(1)
	}
	return m, nil
}

func describeAuthError(err error) string {
	var perr *auth.ProviderError
	if errors.As(err, &perr) {
		return perr.Message
	}
	return err.Error()
}

// renderAuth draws the sign in / sign up screen
func (m Model) renderAuth() string {
	f := m.login

	login, signUp := TabActiveStyle, TabStyle
	if f.signUp {
		login, signUp = TabStyle, TabActiveStyle
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, login.Render("LOGIN"), signUp.Render("SIGN UP"))

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("NEOCOUNT") + "\n\n")
	b.WriteString(tabs + "\n\n")

	if f.err != "" {
		b.WriteString(ErrorBannerStyle.Render(f.err) + "\n\n")
	}
	if f.success != "" {
		b.WriteString(SuccessBannerStyle.Render(f.success) + "\n\n")
	}

	emailLabel, passLabel := FocusedLabelStyle, LabelStyle
	if f.focus == 1 {
		emailLabel, passLabel = LabelStyle, FocusedLabelStyle
	}
	b.WriteString(emailLabel.Render("EMAIL") + "\n")
	b.WriteString(f.email.View() + "\n\n")
	b.WriteString(passLabel.Render("PASSWORD") + "\n")
	b.WriteString(f.password.View() + "\n\n")

	action := "Enter: log in"
	if f.signUp {
		action = "Enter: create account"
	}
	if f.busy {
		action = "Working..."
	}
	b.WriteString(HelpStyle.Render(fmt.Sprintf("%s  ctrl+t: switch  ctrl+c: quit", action)) + "\n\n")

	if url := m.gate.AuthorizeURL("google", m.redirectURL); url != "" {
		b.WriteString(HelpStyle.Render("Google sign in: run `neocount auth sso` or open") + "\n")
		b.WriteString(HelpStyle.Render(url))
	}

	box := DrawerStyle.Width(min(72, max(40, m.width-4))).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
