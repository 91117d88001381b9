package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/neocount/internal/editor"
	"github.com/existflow/neocount/internal/logger"
	"github.com/existflow/neocount/internal/model"
	"github.com/existflow/neocount/internal/picker"
)

// scrollEndDelay is how long the wheel must rest before a column snaps
const scrollEndDelay = 150 * time.Millisecond

// pickerOptions sizes date columns in quarter-row wheel units
var pickerOptions = picker.Options{ItemHeight: 4, VisibleItems: 5}

// wheelStep is the offset one wheel notch scrolls
const wheelStep = 2

// field is a focusable row of the configuration form
type field int

const (
	fieldName field = iota
	fieldDescription
	fieldDate
	fieldIcon
	fieldColor
	fieldNotes
)

// scrollEndMsg fires after the wheel rested. Stale sequences are ignored.
type scrollEndMsg struct {
	seq int
}

// drawer is the overlay that views, configures and annotates one event
type drawer struct {
	flow  *editor.Flow
	focus field
	part  picker.Part
	err   string

	name        textinput.Model
	description textarea.Model
	date        *picker.DatePicker

	noteCursor  int
	noteFocus   int // 0 title, 1 content
	noteTitle   textinput.Model
	noteContent textarea.Model

	scrollSeq int
}

func newDrawer(flow *editor.Flow, now time.Time) *drawer {
	name := textinput.New()
	name.Placeholder = "Japan Trip"
	name.CharLimit = 80
	name.Width = 40

	desc := textarea.New()
	desc.Placeholder = "What is it about?"
	desc.ShowLineNumbers = false
	desc.SetWidth(44)
	desc.SetHeight(3)

	title := textinput.New()
	title.Placeholder = model.UntitledNote
	title.CharLimit = 120
	title.Width = 44

	content := textarea.New()
	content.Placeholder = "Write anything..."
	content.ShowLineNumbers = false
	content.SetWidth(48)
	content.SetHeight(10)

	d := &drawer{
		flow:        flow,
		part:        picker.PartDay,
		name:        name,
		description: desc,
		noteTitle:   title,
		noteContent: content,
	}

	draft := flow.Draft()
	d.name.SetValue(draft.Name)
	d.description.SetValue(draft.Description)
	d.date = picker.NewDatePicker(draft.TargetDate, now, pickerOptions, func(t time.Time) {
		_ = flow.Edit(func(dr *model.Draft) { dr.TargetDate = t })
	})
	d.setFocus(fieldName)
	return d
}

// fields lists the form rows for the current draft
func (d *drawer) fields() []field {
	if d.flow.Draft().IsDetailedNotes {
		return []field{fieldName, fieldDate, fieldIcon, fieldColor, fieldNotes}
	}
	return []field{fieldName, fieldDescription, fieldDate, fieldIcon, fieldColor, fieldNotes}
}

func (d *drawer) setFocus(f field) {
	d.focus = f
	d.name.Blur()
	d.description.Blur()
	switch f {
	case fieldName:
		d.name.Focus()
	case fieldDescription:
		d.description.Focus()
	}
}

func (d *drawer) moveFocus(delta int) {
	fields := d.fields()
	idx := 0
	for i, f := range fields {
		if f == d.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(fields)) % len(fields)
	d.setFocus(fields[idx])
}

func (d *drawer) setNoteFocus(i int) {
	d.noteFocus = i
	if i == 0 {
		d.noteTitle.Focus()
		d.noteContent.Blur()
	} else {
		d.noteContent.Focus()
		d.noteTitle.Blur()
	}
}

// openNote loads a page (or a blank one) into the note editor
func (d *drawer) openNote(id string) error {
	if err := d.flow.OpenNote(id); err != nil {
		return err
	}
	note := d.flow.Note()
	d.noteTitle.SetValue(note.Title)
	d.noteContent.SetValue(note.Content)
	d.setNoteFocus(0)
	return nil
}

// selectedNoteID returns the page under the note cursor
func (d *drawer) selectedNoteID() string {
	notes := d.flow.Draft().Notes
	if d.noteCursor < 0 || d.noteCursor >= len(notes) {
		return ""
	}
	return notes[d.noteCursor].ID
}

// cycle returns the neighbour of current in options
func cycle[T comparable](options []T, current T, delta int) T {
	idx := 0
	for i, o := range options {
		if o == current {
			idx = i
		}
	}
	return options[(idx+delta+len(options))%len(options)]
}

// startAddEvent opens the drawer on a fresh draft
func (m Model) startAddEvent() (tea.Model, tea.Cmd) {
	flow := editor.New(m.events)
	if err := flow.OpenNew(m.now()); err != nil {
		m.message = "Error: " + err.Error()
		return m, nil
	}
	m.drawer = newDrawer(flow, m.now())
	m.mode = ModeDrawer
	return m, textinput.Blink
}

// startViewEvent opens the drawer read-only on the selected event
func (m Model) startViewEvent() (tea.Model, tea.Cmd) {
	e := m.currentEvent()
	if e == nil {
		return m, nil
	}
	flow := editor.New(m.events)
	if err := flow.Open(*e); err != nil {
		m.message = "Error: " + err.Error()
		return m, nil
	}
	m.drawer = newDrawer(flow, m.now())
	m.drawer.setFocus(fieldNotes)
	m.mode = ModeDrawer
	return m, nil
}

// closeDrawer discards whatever the drawer holds
func (m *Model) closeDrawer() {
	if m.drawer != nil {
		m.drawer.flow.Close()
	}
	m.drawer = nil
	m.mode = ModeNormal
}

// updateDrawer routes keys by the flow mode
func (m Model) updateDrawer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.drawer
	d.err = ""

	switch d.flow.Mode() {
	case editor.View:
		return m.updateDrawerView(msg)
	case editor.EditConfig:
		return m.updateDrawerConfig(msg)
	case editor.EditNote:
		return m.updateDrawerNote(msg)
	}

	m.closeDrawer()
	return m, nil
}

func (m Model) updateDrawerView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.drawer
	notes := d.flow.Draft().Notes

	switch {
	case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Quit):
		m.closeDrawer()
	case key.Matches(msg, keys.Edit):
		if err := d.flow.EditConfig(); err != nil {
			d.err = err.Error()
			break
		}
		d.setFocus(fieldName)
		return m, textinput.Blink
	case key.Matches(msg, keys.Up):
		if d.noteCursor > 0 {
			d.noteCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.noteCursor < len(notes)-1 {
			d.noteCursor++
		}
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Notes):
		return m.openDrawerNote(d.selectedNoteID())
	case key.Matches(msg, keys.NewNote):
		return m.openDrawerNote("")
	case key.Matches(msg, keys.Delete):
		m.closeDrawer()
		return m.startDelete()
	}
	return m, nil
}

func (m Model) openDrawerNote(id string) (tea.Model, tea.Cmd) {
	d := m.drawer
	if err := d.openNote(id); err != nil {
		if errors.Is(err, editor.ErrSimpleNotes) {
			d.err = "Enable detailed notes first (e, then ctrl+d)"
		} else {
			d.err = err.Error()
		}
		return m, nil
	}
	return m, textinput.Blink
}

func (m Model) updateDrawerConfig(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.drawer

	switch {
	case key.Matches(msg, keys.Escape):
		m.closeDrawer()
		return m, nil
	case key.Matches(msg, keys.Save):
		return m.saveDrawer()
	case key.Matches(msg, keys.Detailed):
		if err := d.flow.EnableDetailedNotes(m.now()); err != nil {
			d.err = err.Error()
		}
		if d.focus == fieldDescription {
			d.setFocus(fieldNotes)
		}
		return m, nil
	case key.Matches(msg, keys.Tab):
		d.moveFocus(1)
		return m, nil
	case key.Matches(msg, keys.BackTab):
		d.moveFocus(-1)
		return m, nil
	}

	switch d.focus {
	case fieldName:
		var cmd tea.Cmd
		d.name, cmd = d.name.Update(msg)
		name := d.name.Value()
		_ = d.flow.Edit(func(dr *model.Draft) { dr.Name = name })
		return m, cmd

	case fieldDescription:
		var cmd tea.Cmd
		d.description, cmd = d.description.Update(msg)
		desc := d.description.Value()
		_ = d.flow.Edit(func(dr *model.Draft) { dr.Description = desc })
		return m, cmd

	case fieldDate:
		switch msg.String() {
		case "left", "h":
			d.part = cycle([]picker.Part{picker.PartMonth, picker.PartDay, picker.PartYear}, d.part, -1)
		case "right", "l":
			d.part = cycle([]picker.Part{picker.PartMonth, picker.PartDay, picker.PartYear}, d.part, 1)
		case "up", "k":
			d.date.Column(d.part).Step(-1)
		case "down", "j":
			d.date.Column(d.part).Step(1)
		}

	case fieldIcon:
		if delta := horizontal(msg); delta != 0 {
			_ = d.flow.Edit(func(dr *model.Draft) { dr.Icon = cycle(model.Icons, dr.Icon, delta) })
		}

	case fieldColor:
		if delta := horizontal(msg); delta != 0 {
			_ = d.flow.Edit(func(dr *model.Draft) { dr.Color = cycle(model.Colors, dr.Color, delta) })
		}

	case fieldNotes:
		notes := d.flow.Draft().Notes
		switch {
		case key.Matches(msg, keys.Up):
			if d.noteCursor > 0 {
				d.noteCursor--
			}
		case key.Matches(msg, keys.Down):
			if d.noteCursor < len(notes)-1 {
				d.noteCursor++
			}
		case key.Matches(msg, keys.Enter):
			if !d.flow.Draft().IsDetailedNotes {
				if err := d.flow.EnableDetailedNotes(m.now()); err != nil {
					d.err = err.Error()
				}
				return m, nil
			}
			return m.openDrawerNote(d.selectedNoteID())
		case key.Matches(msg, keys.NewNote):
			return m.openDrawerNote("")
		}
	}
	return m, nil
}

func horizontal(msg tea.KeyMsg) int {
	switch {
	case key.Matches(msg, keys.Left):
		return -1
	case key.Matches(msg, keys.Right), msg.Type == tea.KeySpace:
		return 1
	}
	return 0
}

// saveDrawer commits the draft. On failure the drawer stays open with the
// draft intact.
func (m Model) saveDrawer() (tea.Model, tea.Cmd) {
	d := m.drawer
	isNew := d.flow.Draft().IsNew()

	e, err := d.flow.Save(context.Background())
	if err != nil {
		logger.Warn("Failed to save event", logger.F("error", err.Error()))
		d.err = err.Error()
		return m, nil
	}

	m.drawer = nil
	m.mode = ModeNormal
	m.bindTimers()
	for i, ev := range m.events.Events() {
		if ev.ID == e.ID {
			m.cursor = i
		}
	}
	if isNew {
		m.message = fmt.Sprintf("Created: %s", e.Name)
	} else {
		m.message = fmt.Sprintf("Updated: %s", e.Name)
	}
	return m, nil
}

func (m Model) updateDrawerNote(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.drawer

	switch {
	case key.Matches(msg, keys.Escape):
		if err := d.flow.CancelNote(); err != nil {
			d.err = err.Error()
		}
		return m, nil
	case key.Matches(msg, keys.Save):
		err := d.flow.SaveNote(context.Background(), d.noteTitle.Value(), d.noteContent.Value(), m.now())
		if err != nil {
			logger.Warn("Failed to save note", logger.F("error", err.Error()))
			d.err = err.Error()
			return m, nil
		}
		d.noteCursor = max(0, len(d.flow.Draft().Notes)-1)
		if !d.flow.Draft().IsNew() {
			m.bindTimers()
		}
		m.message = "Note saved"
		return m, nil
	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.BackTab):
		d.setNoteFocus(1 - d.noteFocus)
		return m, nil
	}

	var cmd tea.Cmd
	if d.noteFocus == 0 {
		d.noteTitle, cmd = d.noteTitle.Update(msg)
	} else {
		d.noteContent, cmd = d.noteContent.Update(msg)
	}
	return m, cmd
}

// handleDrawerMouse scrolls the focused date column by partial offsets and
// snaps it once the wheel rests
func (m Model) handleDrawerMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	d := m.drawer
	if d == nil || d.flow.Mode() != editor.EditConfig || d.focus != fieldDate {
		return m, nil
	}

	col := d.date.Column(d.part)
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		col.ScrollBy(-wheelStep)
	case tea.MouseButtonWheelDown:
		col.ScrollBy(wheelStep)
	default:
		return m, nil
	}

	d.scrollSeq++
	seq := d.scrollSeq
	return m, tea.Tick(scrollEndDelay, func(time.Time) tea.Msg {
		return scrollEndMsg{seq: seq}
	})
}

// handleScrollEnd confirms the highlighted value once scrolling stopped
func (m Model) handleScrollEnd(msg scrollEndMsg) (tea.Model, tea.Cmd) {
	d := m.drawer
	if d == nil || msg.seq != d.scrollSeq || d.flow.Mode() != editor.EditConfig {
		return m, nil
	}
	d.date.Column(d.part).ScrollEnd()
	return m, nil
}

// renderDrawer draws the overlay for the current flow mode
func (m Model) renderDrawer() string {
	d := m.drawer
	draft := d.flow.Draft()
	width := min(56, max(40, m.width-6))

	var b strings.Builder
	switch d.flow.Mode() {
	case editor.View:
		b.WriteString(m.renderDrawerView(draft, width))
	case editor.EditConfig:
		b.WriteString(m.renderDrawerConfig(draft, width))
	case editor.EditNote:
		b.WriteString(m.renderDrawerNote(width))
	}

	if d.err != "" {
		b.WriteString("\n" + ErrorBannerStyle.Render(wrap(d.err, width-6)))
	}

	return DrawerStyle.Width(width).BorderForeground(ColorFor(draft.Color)).Render(b.String())
}

func (m Model) renderDrawerView(draft model.Draft, width int) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Background(ColorFor(draft.Color)).Render(draft.Icon+" "+strings.ToUpper(draft.Name)) + "\n\n")
	b.WriteString(LabelStyle.Render("TARGET") + " " + draft.TargetDate.Format("Mon, Jan 2 2006 15:04") + "\n\n")

	if draft.IsDetailedNotes {
		b.WriteString(m.renderNoteList(draft.Notes, true, width))
	} else if draft.Description != "" {
		b.WriteString(wrap(draft.Description, width-4) + "\n")
	} else {
		b.WriteString(HelpStyle.Render("No description") + "\n")
	}

	b.WriteString("\n" + HelpStyle.Render("e:edit  enter:open note  N:new note  d:delete  esc:close"))
	return b.String()
}

func (m Model) renderDrawerConfig(draft model.Draft, width int) string {
	d := m.drawer
	label := func(f field, text string) string {
		if d.focus == f {
			return FocusedLabelStyle.Render("▸ "+text) + "\n"
		}
		return LabelStyle.Render("  "+text) + "\n"
	}

	title := "EDIT COUNTDOWN"
	if draft.IsNew() {
		title = "NEW COUNTDOWN"
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(title) + "\n\n")

	b.WriteString(label(fieldName, "NAME"))
	b.WriteString(d.name.View() + "\n\n")

	if !draft.IsDetailedNotes {
		b.WriteString(label(fieldDescription, "DESCRIPTION"))
		b.WriteString(d.description.View() + "\n\n")
	}

	b.WriteString(label(fieldDate, "DATE"))
	b.WriteString(m.renderDatePicker() + "\n\n")

	b.WriteString(label(fieldIcon, "ICON"))
	b.WriteString(renderChoices(model.Icons, draft.Icon, func(s string) string { return s }) + "\n\n")

	b.WriteString(label(fieldColor, "COLOR"))
	b.WriteString(renderChoices(model.Colors, draft.Color, func(c model.Color) string {
		return lipgloss.NewStyle().Foreground(ColorFor(c)).Render("■ " + string(c))
	}) + "\n\n")

	b.WriteString(label(fieldNotes, "NOTES"))
	if draft.IsDetailedNotes {
		b.WriteString(m.renderNoteList(draft.Notes, d.focus == fieldNotes, width))
	} else {
		b.WriteString(HelpStyle.Render("Simple description. Press enter here or ctrl+d for detailed notes (one way).") + "\n")
	}

	b.WriteString("\n" + HelpStyle.Render("tab:next  ctrl+s:save  esc:cancel"))
	return b.String()
}

func renderChoices[T comparable](options []T, selected T, render func(T) string) string {
	parts := make([]string, 0, len(options))
	for _, o := range options {
		s := render(o)
		if o == selected {
			s = lipgloss.NewStyle().Bold(true).Underline(true).Render("[" + s + "]")
		} else {
			s = " " + s + " "
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// renderDatePicker draws the month, day and year columns side by side
func (m Model) renderDatePicker() string {
	d := m.drawer
	parts := []picker.Part{picker.PartMonth, picker.PartDay, picker.PartYear}
	cols := make([]string, 0, len(parts))

	for _, p := range parts {
		col := d.date.Column(p)
		items := col.Items()
		width := len(items[len(items)-1]) + 2

		var rows []string
		for _, i := range col.Window() {
			if i < 0 {
				rows = append(rows, strings.Repeat(" ", width))
				continue
			}
			style := pickerItemStyle(col.Opacity(i), col.Emphasized(i) && d.focus == fieldDate && d.part == p)
			rows = append(rows, style.Width(width).Align(lipgloss.Center).Render(items[i]))
		}

		head := LabelStyle
		if d.focus == fieldDate && d.part == p {
			head = FocusedLabelStyle
		}
		rows = append([]string{head.Width(width).Align(lipgloss.Center).Render(p.String())}, rows...)
		cols = append(cols, lipgloss.JoinVertical(lipgloss.Center, rows...))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderNoteList(notes []model.NotePage, focused bool, width int) string {
	d := m.drawer
	if len(notes) == 0 {
		return HelpStyle.Render("No pages yet. N: new page") + "\n"
	}

	var b strings.Builder
	for i, n := range notes {
		line := fmt.Sprintf("%s  %s", clip(n.Title, width-24), HelpStyle.Render(n.UpdatedAt.Format("Jan 2 15:04")))
		if focused && i == d.noteCursor {
			line = FocusedLabelStyle.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderDrawerNote(width int) string {
	d := m.drawer
	title := "NEW NOTE PAGE"
	if d.flow.Note().ID != "" {
		title = "EDIT NOTE PAGE"
	}

	titleLabel, contentLabel := FocusedLabelStyle, LabelStyle
	if d.noteFocus == 1 {
		titleLabel, contentLabel = LabelStyle, FocusedLabelStyle
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(title) + "\n\n")
	b.WriteString(titleLabel.Render("TITLE") + "\n")
	b.WriteString(d.noteTitle.View() + "\n\n")
	b.WriteString(contentLabel.Render("CONTENT") + "\n")
	b.WriteString(d.noteContent.View() + "\n\n")
	b.WriteString(HelpStyle.Render(wrap("tab:switch field  ctrl+s:save page  esc:back", width-4)))
	return b.String()
}
