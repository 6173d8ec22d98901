// Package ui is the terminal front end of the editor: a form over the open
// document's tags plus the modal prompts of the open and save flows. All
// metadata state lives in the session; opening goes through the access gate,
// whose dialog calls arrive here as messages.
package ui

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Manitary/pdf-metadata-editor/internal/config"
	"github.com/Manitary/pdf-metadata-editor/internal/document"
	"github.com/Manitary/pdf-metadata-editor/internal/session"
)

type state int

const (
	statePath state = iota
	stateOpening
	statePassword
	stateStrictConfirm
	stateNotice
	stateForm
	stateSaveConfirm
	stateSaving
)

type saveResultMsg struct{ err error }

// field pairs an editable tag with its text input.
type field struct {
	tag   *session.Tag
	input textinput.Model
}

// Model is the Bubble Tea model for the whole application.
type Model struct {
	cfg *config.Config
	log *slog.Logger

	state state

	pathInput     textinput.Model
	passwordInput textinput.Model

	// in-flight open attempt
	flow        *openFlow
	confirmText string

	sess       *session.Session
	fields     []field
	focus      int
	highlights map[string]bool

	notice     string
	noticeNext state
	status     string
	width      int
}

// New builds the initial model. If cfg.Path is set the file is opened on
// startup, otherwise the path prompt is shown.
func New(cfg *config.Config, log *slog.Logger) Model {
	if log == nil {
		log = slog.Default()
	}

	pathInput := textinput.New()
	pathInput.Placeholder = "path/to/file.pdf"
	pathInput.Prompt = "> "
	pathInput.Width = 60

	passwordInput := textinput.New()
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.Prompt = "> "
	passwordInput.Width = 40

	m := Model{
		cfg:           cfg,
		log:           log,
		state:         statePath,
		pathInput:     pathInput,
		passwordInput: passwordInput,
	}
	if cfg.Path != "" {
		m.state = stateOpening
		m.flow = newOpenFlow(cfg.Path)
	} else {
		m.pathInput.Focus()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.flow != nil {
		return tea.Batch(textinput.Blink, m.flow.start(document.NewGate(m.flow, m.log)))
	}
	return textinput.Blink
}

func saveCmd(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		return saveResultMsg{err: s.Save()}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case flowMsg:
		return m.handleFlowEvent(msg)
	case saveResultMsg:
		return m.handleSaveResult(msg)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state {
		case statePath:
			return m.updatePath(msg)
		case statePassword:
			return m.updatePassword(msg)
		case stateStrictConfirm:
			return m.updateStrictConfirm(msg)
		case stateNotice:
			return m.acknowledgeNotice()
		case stateForm:
			return m.updateForm(msg)
		case stateSaveConfirm:
			return m.updateSaveConfirm(msg)
		default:
			return m, nil
		}
	}
	return m.updateActiveInput(msg)
}

// updateActiveInput forwards non-key messages (cursor blink and friends) to
// whichever text input currently has focus.
func (m Model) updateActiveInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case statePath:
		m.pathInput, cmd = m.pathInput.Update(msg)
	case statePassword:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	case stateForm:
		if len(m.fields) > 0 {
			m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
		}
	}
	return m, cmd
}

func (m Model) updatePath(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		if path == "" {
			return m, nil
		}
		return m.startOpen(path)
	case "esc":
		if m.sess != nil {
			m.state = stateForm
			return m, nil
		}
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

// startOpen launches the gate for path on its own goroutine; everything the
// gate asks the user comes back through handleFlowEvent.
func (m Model) startOpen(path string) (tea.Model, tea.Cmd) {
	m.flow = newOpenFlow(path)
	m.state = stateOpening
	return m, m.flow.start(document.NewGate(m.flow, m.log))
}

func (m Model) handleFlowEvent(msg flowMsg) (tea.Model, tea.Cmd) {
	if msg.flow != m.flow {
		// Stale event from an abandoned attempt.
		return m, nil
	}
	switch msg.event.kind {
	case flowPrompt:
		m.passwordInput.SetValue("")
		m.passwordInput.Focus()
		m.state = statePassword
		return m, nil
	case flowNotice:
		m.notice = msg.event.text
		m.state = stateNotice
		return m, nil
	case flowConfirm:
		m.confirmText = msg.event.text
		m.state = stateStrictConfirm
		return m, nil
	case flowDone:
		m.flow = nil
		if msg.event.err == nil {
			return m.adoptDoc(msg.event.doc)
		}
		// Errors were already surfaced as notices; cancels are silent.
		return m.abandonOpen()
	}
	return m, nil
}

func (m Model) updatePassword(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.flow.passwords <- passwordReply{text: m.passwordInput.Value(), ok: true}
		m.state = stateOpening
		return m, m.flow.next()
	case "esc":
		m.flow.passwords <- passwordReply{}
		m.state = stateOpening
		return m, m.flow.next()
	}
	var cmd tea.Cmd
	m.passwordInput, cmd = m.passwordInput.Update(msg)
	return m, cmd
}

func (m Model) updateStrictConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.flow.answers <- true
		m.state = stateOpening
		return m, m.flow.next()
	case "n", "N", "esc", "enter":
		m.flow.answers <- false
		m.state = stateOpening
		return m, m.flow.next()
	}
	return m, nil
}

// acknowledgeNotice dismisses the notice screen. A notice raised by a running
// open flow resumes the gate; a save notice returns to its recorded state.
func (m Model) acknowledgeNotice() (tea.Model, tea.Cmd) {
	if m.flow != nil {
		m.flow.acks <- struct{}{}
		m.state = stateOpening
		return m, m.flow.next()
	}
	m.state = m.noticeNext
	return m, nil
}

func (m Model) updateSaveConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.state = stateSaving
		return m, saveCmd(m.sess)
	case "n", "N", "esc", "enter":
		m.state = stateForm
		return m, nil
	}
	return m, nil
}

// abandonOpen returns to the previous screen after a failed or cancelled open:
// the form if a session is live, the path prompt otherwise.
func (m Model) abandonOpen() (tea.Model, tea.Cmd) {
	if m.sess != nil {
		m.state = stateForm
		return m, nil
	}
	m.state = statePath
	m.pathInput.Focus()
	return m, nil
}

// showNotice switches to the acknowledge-only notice screen; next is the
// state entered once the user presses a key.
func (m Model) showNotice(text string, next state) (tea.Model, tea.Cmd) {
	m.notice = text
	m.noticeNext = next
	m.state = stateNotice
	return m, nil
}

func (m Model) handleSaveResult(msg saveResultMsg) (tea.Model, tea.Cmd) {
	m.state = stateForm
	switch {
	case msg.err == nil:
		m.status = "Saved " + m.sess.Path()
		return m, nil
	case errors.Is(msg.err, session.ErrBackupTargetMissing):
		return m.showNotice("The file to back up no longer exists; nothing was saved", stateForm)
	default:
		m.log.Error("save failed", "path", m.sess.Path(), "error", msg.err)
		return m.showNotice("The file could not be saved", stateForm)
	}
}
