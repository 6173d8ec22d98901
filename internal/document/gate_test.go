package document

import (
	"errors"
	"testing"
)

// scriptedDialogs feeds canned answers to the gate and records what it showed.
type scriptedDialogs struct {
	passwords []passwordAnswer
	confirm   bool

	shownErrors []string
	confirmed   []string
	prompts     int
}

type passwordAnswer struct {
	text string
	ok   bool
}

func (d *scriptedDialogs) PromptPassword() (string, bool) {
	d.prompts++
	if len(d.passwords) == 0 {
		return "", false
	}
	a := d.passwords[0]
	d.passwords = d.passwords[1:]
	return a.text, a.ok
}

func (d *scriptedDialogs) Confirm(question string) bool {
	d.confirmed = append(d.confirmed, question)
	return d.confirm
}

func (d *scriptedDialogs) ShowError(message string) {
	d.shownErrors = append(d.shownErrors, message)
}

// stubParse simulates a document that decrypts only with the given password.
// An empty want means the file is not encrypted. strictErr, if set, fails the
// strict pass only.
func stubParse(want string, strictErr error) func(string, string, bool) (*Document, error) {
	return func(path, password string, strict bool) (*Document, error) {
		if password != want {
			return nil, ErrWrongPassword
		}
		if strict && strictErr != nil {
			return nil, strictErr
		}
		return &Document{path: path, encrypted: want != ""}, nil
	}
}

func newTestGate(d Dialogs, parse func(string, string, bool) (*Document, error)) *Gate {
	g := NewGate(d, nil)
	g.parse = parse
	return g
}

func TestGateOpenPlain(t *testing.T) {
	d := &scriptedDialogs{}
	g := newTestGate(d, stubParse("", nil))

	doc, err := g.Open("file.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if doc == nil {
		t.Fatal("no document returned")
	}
	if d.prompts != 0 {
		t.Errorf("password prompted %d times for a plain file", d.prompts)
	}
	if len(d.shownErrors) != 0 {
		t.Errorf("unexpected errors shown: %v", d.shownErrors)
	}
}

func TestGateOpenUnreadable(t *testing.T) {
	d := &scriptedDialogs{}
	g := newTestGate(d, func(string, string, bool) (*Document, error) {
		return nil, ErrUnreadable
	})

	if _, err := g.Open("file.pdf"); !errors.Is(err, ErrUnreadable) {
		t.Fatalf("open: got %v, want ErrUnreadable", err)
	}
	if len(d.shownErrors) != 1 || d.shownErrors[0] != msgUnreadable {
		t.Errorf("shown errors = %v, want exactly one %q", d.shownErrors, msgUnreadable)
	}
	if d.prompts != 0 {
		t.Errorf("password prompted %d times for an unreadable file", d.prompts)
	}
}

func TestGateOpenEncryptedRetryUntilCorrect(t *testing.T) {
	d := &scriptedDialogs{
		passwords: []passwordAnswer{
			{"wrong1", true},
			{"wrong2", true},
			{"right", true},
		},
	}
	g := newTestGate(d, stubParse("right", nil))

	doc, err := g.Open("file.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !doc.Encrypted() {
		t.Error("document not flagged encrypted")
	}
	if d.prompts != 3 {
		t.Errorf("prompted %d times, want 3", d.prompts)
	}
	// One notice per wrong attempt, none for the correct one.
	if len(d.shownErrors) != 2 {
		t.Fatalf("shown errors = %v, want 2 entries", d.shownErrors)
	}
	for _, e := range d.shownErrors {
		if e != msgWrongPassword {
			t.Errorf("shown error = %q, want %q", e, msgWrongPassword)
		}
	}
}

func TestGateOpenEncryptedEmptyPasswordStillPrompts(t *testing.T) {
	// The file decrypts with the empty user password, so the probe succeeds,
	// but an encrypted file always gets the password dialog.
	parse := func(path, password string, strict bool) (*Document, error) {
		return &Document{path: path, encrypted: true}, nil
	}
	d := &scriptedDialogs{passwords: []passwordAnswer{{"", true}}}
	g := newTestGate(d, parse)

	doc, err := g.Open("file.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !doc.Encrypted() {
		t.Error("document not flagged encrypted")
	}
	if d.prompts != 1 {
		t.Errorf("prompted %d times, want 1", d.prompts)
	}
	if len(d.shownErrors) != 0 {
		t.Errorf("accepting the empty password showed errors: %v", d.shownErrors)
	}
}

func TestGateOpenEncryptedCancelled(t *testing.T) {
	d := &scriptedDialogs{
		passwords: []passwordAnswer{
			{"wrong", true},
			{"", false}, // cancel
		},
	}
	g := newTestGate(d, stubParse("right", nil))

	if _, err := g.Open("file.pdf"); !errors.Is(err, ErrCancelled) {
		t.Fatalf("open: got %v, want ErrCancelled", err)
	}
	// Silent abort: the only notice belongs to the earlier wrong attempt.
	if len(d.shownErrors) != 1 {
		t.Errorf("shown errors = %v, want only the wrong-password notice", d.shownErrors)
	}
}

func TestGateStrictFailureConfirmed(t *testing.T) {
	d := &scriptedDialogs{confirm: true}
	g := newTestGate(d, stubParse("", errors.New("strict validation error")))

	doc, err := g.Open("file.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if doc == nil {
		t.Fatal("no document returned after confirmation")
	}
	if len(d.confirmed) != 1 {
		t.Errorf("confirm asked %d times, want 1", len(d.confirmed))
	}
}

func TestGateStrictFailureDeclined(t *testing.T) {
	d := &scriptedDialogs{confirm: false}
	g := newTestGate(d, stubParse("", errors.New("strict validation error")))

	if _, err := g.Open("file.pdf"); !errors.Is(err, ErrCancelled) {
		t.Fatalf("open: got %v, want ErrCancelled", err)
	}
	if len(d.shownErrors) != 0 {
		t.Errorf("declining the warning must not show an error, got %v", d.shownErrors)
	}
}

func TestGateStrictUsesAcceptedPassword(t *testing.T) {
	var strictPasswords []string
	parse := func(path, password string, strict bool) (*Document, error) {
		if strict {
			strictPasswords = append(strictPasswords, password)
		}
		if password != "right" {
			return nil, ErrWrongPassword
		}
		return &Document{path: path, encrypted: true}, nil
	}
	d := &scriptedDialogs{passwords: []passwordAnswer{{"right", true}}}
	g := newTestGate(d, parse)

	if _, err := g.Open("file.pdf"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(strictPasswords) != 1 || strictPasswords[0] != "right" {
		t.Errorf("strict pass passwords = %v, want the accepted password", strictPasswords)
	}
}
