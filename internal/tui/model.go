// Package tui renders contact sessions as plain text or an interactive
// Bubble Tea form.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts/internal/session"
)

// Field indexes into the form inputs.
const (
	fieldFirst = iota
	fieldLast
	fieldPhone
	fieldCount
)

var fieldLabels = [fieldCount]string{"First name", "Last name", "Phone"}

// Model is the Bubble Tea model for adding and listing contacts.
// The session, and with it the store, lives as long as the program.
type Model struct {
	sess     *session.Session
	inputs   []textinput.Model
	focus    int
	keys     formKeys
	help     help.Model
	status   string
	err      error
	quitting bool
}

// NewModel creates a form with focus on the first name field.
func NewModel(sess *session.Session) Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = fieldLabels[i]
		in.Prompt = fmt.Sprintf("%-11s ", fieldLabels[i]+":")
		in.CharLimit = 0 // unlimited
		in.PromptStyle = blurredPromptStyle
		inputs[i] = in
	}
	inputs[fieldFirst].Focus()
	inputs[fieldFirst].PromptStyle = focusedPromptStyle

	return Model{
		sess:   sess,
		inputs: inputs,
		keys:   FormKeyMap(),
		help:   help.New(),
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			cmd := m.setFocus((m.focus + 1) % fieldCount)
			return m, cmd
		case key.Matches(msg, m.keys.Prev):
			cmd := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, cmd
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit adds the current field values to the session. On rejection the
// inputs are kept so the user can fix them.
func (m Model) submit() (tea.Model, tea.Cmd) {
	first := m.inputs[fieldFirst].Value()
	last := m.inputs[fieldLast].Value()
	phone := m.inputs[fieldPhone].Value()

	if err := m.sess.Add(first, last, phone); err != nil {
		m.err = err
		m.status = ""
		return m, nil
	}

	m.err = nil
	m.status = fmt.Sprintf("Added %s %s", first, last)
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	cmd := m.setFocus(fieldFirst)
	return m, cmd
}

// setFocus moves focus to input i.
func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
			m.inputs[j].PromptStyle = focusedPromptStyle
			continue
		}
		m.inputs[j].Blur()
		m.inputs[j].PromptStyle = blurredPromptStyle
	}
	return cmd
}

// View renders the form, the last outcome, the contact list and the help bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("New contact"))
	b.WriteString("\n\n")
	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n\n")

	var list strings.Builder
	RenderPlain(&list, m.sess.Contacts())
	b.WriteString(listStyle.Render(strings.TrimRight(list.String(), "\n")))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}
