package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	modifiedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	readOnlyStyle = lipgloss.NewStyle().Faint(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	noticeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

func (m Model) View() string {
	switch m.state {
	case statePath:
		return "Select a PDF file\n\n" + m.pathInput.View() + "\n\n" +
			helpStyle.Render("enter open · esc back/quit · ctrl+c quit") + "\n"
	case stateOpening:
		path := ""
		if m.flow != nil {
			path = m.flow.path
		}
		return fmt.Sprintf("Opening %s…\n", path)
	case statePassword:
		return "Encrypted file\nInsert password:\n\n" + m.passwordInput.View() + "\n\n" +
			helpStyle.Render("enter accept · esc cancel") + "\n"
	case stateStrictConfirm:
		return noticeStyle.Render(m.confirmText) + "\n\n" +
			helpStyle.Render("y open anyway · n cancel") + "\n"
	case stateNotice:
		return noticeStyle.Render(m.notice) + "\n\n" + helpStyle.Render("press any key to continue") + "\n"
	case stateSaveConfirm:
		var b strings.Builder
		b.WriteString("Apply changes to the following metadata?\n\n")
		for _, key := range m.sess.Modified() {
			b.WriteString("  " + modifiedStyle.Render(key) + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("y save · n cancel") + "\n")
		return b.String()
	case stateSaving:
		return "Saving…\n"
	case stateForm:
		return m.formView()
	}
	return ""
}

func (m Model) formView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(filepath.Base(m.sess.Path())) + "\n")
	b.WriteString(labelStyle.Render("Path ") + m.sess.Path() + "\n\n")

	labelWidth := 0
	for _, t := range m.sess.Tags() {
		if len(t.Key) > labelWidth {
			labelWidth = len(t.Key)
		}
	}

	i := 0
	for _, t := range m.sess.Tags() {
		label := fmt.Sprintf("%-*s", labelWidth, t.Key)
		if !t.Editable {
			b.WriteString(readOnlyStyle.Render(label+"  "+t.Current()) + "\n")
			continue
		}
		style := labelStyle
		if m.highlights[t.Key] {
			style = modifiedStyle
		}
		b.WriteString(style.Render(label) + "  " + m.fields[i].input.View() + "\n")
		i++
	}

	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(
		"tab/shift+tab move · ctrl+r reset field · ctrl+t reset all · ctrl+s save · ctrl+o open · esc quit") + "\n")
	return b.String()
}
