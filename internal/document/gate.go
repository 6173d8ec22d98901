package document

import (
	"errors"
	"log/slog"
)

// User-facing dialog texts.
const (
	msgUnreadable    = "The file could not be opened"
	msgWrongPassword = "Incorrect password"
	msgNonConformant = "The file does not strictly conform to the PDF specification. Open it anyway?"
)

// Dialogs is the user interaction capability the gate depends on. The
// implementation is expected to be modal: each call blocks until the user
// responds.
type Dialogs interface {
	// PromptPassword asks for a password. ok is false if the user cancelled.
	PromptPassword() (password string, ok bool)
	// Confirm asks a yes/no question.
	Confirm(question string) bool
	// ShowError displays an acknowledge-only error notice.
	ShowError(message string)
}

// Gate turns a file path into an opened Document, driving the password retry
// loop and the strict-conformance check through its Dialogs collaborator.
type Gate struct {
	dialogs Dialogs
	log     *slog.Logger

	// parse is swappable for tests.
	parse func(path, password string, strict bool) (*Document, error)
}

// NewGate returns a Gate using the given dialog collaborator.
func NewGate(dialogs Dialogs, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{dialogs: dialogs, log: log, parse: Parse}
}

// Open attempts to open the file at path.
//
// Unreadable files and wrong passwords are reported through the dialogs; a
// cancelled password prompt or a declined non-conformance warning aborts
// silently. Every failure returns a nil Document together with ErrUnreadable,
// ErrCancelled or the underlying error.
func (g *Gate) Open(path string) (*Document, error) {
	doc, err := g.parse(path, "", false)
	password := ""
	switch {
	case err == nil && doc.Encrypted():
		// Encrypted, but the empty user password happens to work. Prompt
		// anyway, like for any encrypted file; an empty answer accepts it.
		doc, password, err = g.promptLoop(path)
		if err != nil {
			return nil, err
		}
	case err == nil:
	case errors.Is(err, ErrWrongPassword):
		doc, password, err = g.promptLoop(path)
		if err != nil {
			return nil, err
		}
	default:
		g.log.Error("open failed", "path", path, "error", err)
		g.dialogs.ShowError(msgUnreadable)
		return nil, err
	}

	// Secondary pass: strict conformance is advisory only. The lenient
	// handle is used either way; the user just gets to bail out.
	if _, serr := g.parse(path, password, true); serr != nil {
		g.log.Warn("strict validation failed", "path", path, "error", serr)
		if !g.dialogs.Confirm(msgNonConformant) {
			return nil, ErrCancelled
		}
	}

	g.log.Info("file opened", "path", path, "encrypted", doc.Encrypted())
	return doc, nil
}

// promptLoop asks for a password until decryption succeeds or the user
// cancels. There is no retry limit.
func (g *Gate) promptLoop(path string) (*Document, string, error) {
	for {
		password, ok := g.dialogs.PromptPassword()
		if !ok {
			g.log.Info("password prompt cancelled", "path", path)
			return nil, "", ErrCancelled
		}
		doc, err := g.parse(path, password, false)
		if err == nil {
			return doc, password, nil
		}
		if errors.Is(err, ErrWrongPassword) {
			g.log.Info("wrong password", "path", path)
			g.dialogs.ShowError(msgWrongPassword)
			continue
		}
		g.log.Error("open failed after decryption", "path", path, "error", err)
		g.dialogs.ShowError(msgUnreadable)
		return nil, "", err
	}
}
