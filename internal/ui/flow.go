package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Manitary/pdf-metadata-editor/internal/document"
)

type flowEventKind int

const (
	flowPrompt flowEventKind = iota
	flowNotice
	flowConfirm
	flowDone
)

// flowEvent is one dialog request (or the final outcome) of an open attempt.
type flowEvent struct {
	kind flowEventKind
	text string
	doc  *document.Document
	err  error
}

type flowMsg struct {
	flow  *openFlow
	event flowEvent
}

type passwordReply struct {
	text string
	ok   bool
}

// openFlow runs one gate open in a goroutine and bridges its modal dialog
// calls into Bubble Tea messages. Each dialog call sends an event and blocks
// until the model feeds the user's answer back; the buffers keep the model's
// sends from ever blocking.
type openFlow struct {
	path string

	events    chan flowEvent
	passwords chan passwordReply
	answers   chan bool
	acks      chan struct{}
}

func newOpenFlow(path string) *openFlow {
	return &openFlow{
		path:      path,
		events:    make(chan flowEvent),
		passwords: make(chan passwordReply, 1),
		answers:   make(chan bool, 1),
		acks:      make(chan struct{}, 1),
	}
}

// start launches the gate and returns the command awaiting its first event.
func (f *openFlow) start(gate *document.Gate) tea.Cmd {
	go func() {
		doc, err := gate.Open(f.path)
		f.events <- flowEvent{kind: flowDone, doc: doc, err: err}
	}()
	return f.next()
}

// next awaits the flow's next event.
func (f *openFlow) next() tea.Cmd {
	return func() tea.Msg {
		return flowMsg{flow: f, event: <-f.events}
	}
}

// PromptPassword, Confirm and ShowError run on the gate's goroutine.

func (f *openFlow) PromptPassword() (string, bool) {
	f.events <- flowEvent{kind: flowPrompt}
	r := <-f.passwords
	return r.text, r.ok
}

func (f *openFlow) Confirm(question string) bool {
	f.events <- flowEvent{kind: flowConfirm, text: question}
	return <-f.answers
}

func (f *openFlow) ShowError(message string) {
	f.events <- flowEvent{kind: flowNotice, text: message}
	<-f.acks
}
