package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Manitary/pdf-metadata-editor/internal/document"
	"github.com/Manitary/pdf-metadata-editor/internal/session"
)

// adoptDoc replaces the live session with one for the freshly opened document
// and rebuilds the form. Only a gate-approved open gets here.
func (m Model) adoptDoc(doc *document.Document) (tea.Model, tea.Cmd) {
	m.sess = session.New(doc, m.log)
	m.sess.BackupEnabled = m.cfg.BackupEnabled

	highlights := make(map[string]bool)
	m.highlights = highlights
	m.sess.OnModifiedChange = func(key string, modified bool) {
		highlights[key] = modified
	}

	m.fields = nil
	for _, t := range m.sess.Tags() {
		if !t.Editable {
			continue
		}
		input := textinput.New()
		input.Prompt = ""
		input.Width = 48
		input.SetValue(t.Current())
		m.fields = append(m.fields, field{tag: t, input: input})
	}
	m.focus = 0
	if len(m.fields) > 0 {
		m.fields[0].input.Focus()
	}

	m.status = "Opened " + m.sess.Path()
	m.state = stateForm
	return m, textinput.Blink
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		return m.moveFocus(1), nil
	case "shift+tab", "up":
		return m.moveFocus(-1), nil
	case "ctrl+r":
		f := &m.fields[m.focus]
		if err := m.sess.ResetTag(f.tag.Key); err == nil {
			f.input.SetValue(f.tag.Current())
		}
		return m, nil
	case "ctrl+t":
		m.sess.ResetAll()
		for i := range m.fields {
			m.fields[i].input.SetValue(m.fields[i].tag.Current())
		}
		return m, nil
	case "ctrl+s":
		if len(m.sess.Modified()) == 0 {
			m.status = "No changes to save"
			return m, nil
		}
		m.state = stateSaveConfirm
		return m, nil
	case "ctrl+o":
		m.pathInput.SetValue("")
		m.pathInput.Focus()
		m.state = statePath
		return m, nil
	}

	f := &m.fields[m.focus]
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if err := m.sess.Edit(f.tag.Key, f.input.Value()); err != nil {
		m.log.Error("edit rejected", "tag", f.tag.Key, "error", err)
	}
	return m, cmd
}

func (m Model) moveFocus(delta int) Model {
	if len(m.fields) == 0 {
		return m
	}
	m.fields[m.focus].input.Blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	m.fields[m.focus].input.Focus()
	return m
}
