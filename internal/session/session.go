// Package session tracks the editable state of one opened PDF's metadata tags
// and commits changes to disk with a rename-based backup.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Manitary/pdf-metadata-editor/internal/document"
)

// ErrBackupTargetMissing means the file to be backed up no longer existed when
// a save was attempted. Nothing is written in that case.
var ErrBackupTargetMissing = errors.New("file to back up is missing")

// Tag is one metadata key with its loaded baseline and current value.
// Read-only tags never diverge from their baseline.
type Tag struct {
	Key      string
	Editable bool

	originalValue string
	currentValue  string
	modified      bool
}

// Original returns the committed baseline value.
func (t *Tag) Original() string { return t.originalValue }

// Current returns the value as edited so far.
func (t *Tag) Current() string { return t.currentValue }

// Modified reports whether the current value differs from the baseline.
func (t *Tag) Modified() bool { return t.modified }

// Session is the edit state for a single open document. Exactly one session is
// live at a time; opening another file replaces it wholesale.
type Session struct {
	doc  *document.Document
	path string

	tags  []*Tag
	index map[string]*Tag

	// BackupEnabled makes Save rename the original file to a fresh .bak name
	// before writing. On by default.
	BackupEnabled bool

	// StrictCommit delays committing baselines until the new file has been
	// written. With it off (the historical behavior) a save that aborts on a
	// vanished source file still clears the modified flags.
	StrictCommit bool

	// OnModifiedChange fires on every transition of a tag's modified flag.
	OnModifiedChange func(key string, modified bool)

	log *slog.Logger
}

// New builds the session for an opened document: one record per well-known key
// in fixed order whether present or not, then one read-only record per
// remaining key the document reports.
func New(doc *document.Document, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		doc:           doc,
		path:          doc.Path(),
		index:         make(map[string]*Tag),
		BackupEnabled: true,
		log:           log,
	}
	for _, key := range document.WellKnownTags() {
		s.add(key, doc.Value(key), true)
	}
	for _, key := range doc.Keys() {
		if !document.IsWellKnown(key) {
			s.add(key, doc.Value(key), false)
		}
	}
	return s
}

func (s *Session) add(key, value string, editable bool) {
	t := &Tag{Key: key, Editable: editable, originalValue: value, currentValue: value}
	s.tags = append(s.tags, t)
	s.index[key] = t
}

// Path returns the file path the session was opened from.
func (s *Session) Path() string { return s.path }

// Tags returns the tag records in display order.
func (s *Session) Tags() []*Tag {
	return append([]*Tag(nil), s.tags...)
}

// Tag returns the record for key, or nil.
func (s *Session) Tag(key string) *Tag { return s.index[key] }

// Modified returns the keys of all modified tags in display order.
func (s *Session) Modified() []string {
	var keys []string
	for _, t := range s.tags {
		if t.modified {
			keys = append(keys, t.Key)
		}
	}
	return keys
}

// Edit sets the current value of an editable tag and recomputes its modified
// flag. Editing a read-only tag is an error.
func (s *Session) Edit(key, text string) error {
	t := s.index[key]
	if t == nil {
		return fmt.Errorf("unknown tag %q", key)
	}
	if !t.Editable {
		return fmt.Errorf("tag %q is read-only", key)
	}
	t.currentValue = text
	s.setModified(t, t.currentValue != t.originalValue)
	return nil
}

// ResetTag restores one editable tag to its baseline value.
func (s *Session) ResetTag(key string) error {
	t := s.index[key]
	if t == nil {
		return fmt.Errorf("unknown tag %q", key)
	}
	if !t.Editable {
		return fmt.Errorf("tag %q is read-only", key)
	}
	t.currentValue = t.originalValue
	s.setModified(t, false)
	return nil
}

// ResetAll restores every editable tag to its baseline value.
func (s *Session) ResetAll() {
	for _, t := range s.tags {
		if t.Editable {
			t.currentValue = t.originalValue
			s.setModified(t, false)
		}
	}
}

func (s *Session) setModified(t *Tag, modified bool) {
	if t.modified == modified {
		return
	}
	t.modified = modified
	if s.OnModifiedChange != nil {
		s.OnModifiedChange(t.Key, modified)
	}
}

// commit folds the pending edits into the baselines and clears the modified
// flags. Later resets restore these new baselines.
func (s *Session) commit() {
	for _, t := range s.tags {
		if t.modified {
			t.originalValue = t.currentValue
			s.setModified(t, false)
		}
	}
}

// Save writes a copy of the document with the merged tag values to the
// session's path. With no pending edits it touches nothing and returns nil.
// If BackupEnabled, the original file is first renamed to an unused backup
// name; a vanished original aborts the save with ErrBackupTargetMissing.
func (s *Session) Save() error {
	modified := s.Modified()
	if len(modified) == 0 {
		s.log.Debug("save skipped, no pending changes", "path", s.path)
		return nil
	}

	if !s.StrictCommit {
		s.commit()
	}

	if s.BackupEnabled {
		if _, err := os.Stat(s.path); err != nil {
			s.log.Error("backup source missing", "path", s.path, "error", err)
			return fmt.Errorf("%w: %s", ErrBackupTargetMissing, s.path)
		}
		backupPath, err := createBackup(s.path)
		if err != nil {
			s.log.Error("backup failed", "path", s.path, "error", err)
			return err
		}
		s.log.Info("backup created", "path", backupPath)
	}

	info := make(map[string]string, len(s.tags))
	for _, t := range s.tags {
		info[t.Key] = t.currentValue
	}
	if err := s.doc.WriteWithInfo(s.path, info); err != nil {
		s.log.Error("save failed", "path", s.path, "error", err)
		return err
	}

	if s.StrictCommit {
		s.commit()
	}

	// Re-read the written file so a following save serializes the current
	// bytes, not a context that has been written once already.
	if doc, err := s.doc.Reopen(); err == nil {
		s.doc = doc
	} else {
		s.log.Warn("reopen after save failed, keeping previous handle", "path", s.path, "error", err)
	}

	s.log.Info("file saved", "path", s.path, "tags", modified)
	return nil
}
