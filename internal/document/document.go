// Package document opens PDF files and exposes their document-information
// dictionary for editing. Parsing, validation, decryption and writing are all
// delegated to pdfcpu; this package only classifies outcomes and keeps the
// information dictionary addressable by tag name.
package document

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var (
	// ErrUnreadable means the file could not be parsed as a PDF at all.
	ErrUnreadable = errors.New("file could not be opened")
	// ErrWrongPassword means the file is encrypted and the supplied password
	// (possibly empty) did not decrypt it.
	ErrWrongPassword = errors.New("incorrect password")
	// ErrCancelled means the user aborted an open attempt.
	ErrCancelled = errors.New("open cancelled")
)

// wellKnownTags are the editable information dictionary keys, in display order.
var wellKnownTags = []string{"Title", "Author", "Subject", "Keywords", "Producer", "Creator"}

// WellKnownTags returns the editable tag keys in their fixed display order.
func WellKnownTags() []string {
	return append([]string(nil), wellKnownTags...)
}

// IsWellKnown reports whether key is one of the editable tag keys.
func IsWellKnown(key string) bool {
	for _, t := range wellKnownTags {
		if t == key {
			return true
		}
	}
	return false
}

// Document is an opened PDF file. It owns a fully materialized pdfcpu context,
// so it stays usable after the file at Path is renamed or replaced.
type Document struct {
	path      string
	password  string
	encrypted bool
	ctx       *model.Context

	values map[string]string
	raw    map[string]types.Object
	keys   []string
}

// Parse reads the file at path as a PDF. A non-empty password is used as both
// user and owner password. With strict set, the document must pass strict
// conformance validation; otherwise relaxed validation is applied.
//
// Failures are classified: ErrWrongPassword if decryption failed,
// ErrUnreadable for anything else.
func Parse(path, password string, strict bool) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if strict {
		conf.ValidationMode = model.ValidationStrict
	}
	conf.UserPW = password
	conf.OwnerPW = password

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, classify(err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, classify(err)
	}

	d := &Document{
		path:      path,
		password:  password,
		encrypted: ctx.Encrypt != nil,
		ctx:       ctx,
	}
	d.readInfo()
	return d, nil
}

// classify maps a pdfcpu read/validate error onto the package taxonomy.
// pdfcpu has no stable exported sentinel for password failures, so the check
// matches on the reported message.
func classify(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "password") {
		return fmt.Errorf("%w: %v", ErrWrongPassword, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreadable, err)
}

// readInfo materializes the information dictionary into string values.
// Entries that cannot be resolved at all are skipped.
func (d *Document) readInfo() {
	d.values = make(map[string]string)
	d.raw = make(map[string]types.Object)

	if d.ctx.Info == nil {
		return
	}
	dict, err := d.ctx.DereferenceDict(*d.ctx.Info)
	if err != nil || dict == nil {
		return
	}

	var extras []string
	for key, obj := range dict {
		value, ok := infoString(d.ctx, obj)
		if !ok {
			continue
		}
		d.values[key] = value
		d.raw[key] = obj
		if !IsWellKnown(key) {
			extras = append(extras, key)
		}
	}

	// Well-known keys first in fixed order, then extras. The underlying
	// dictionary is a map, so extras are sorted for a stable order.
	sort.Strings(extras)
	for _, key := range wellKnownTags {
		if _, ok := d.values[key]; ok {
			d.keys = append(d.keys, key)
		}
	}
	d.keys = append(d.keys, extras...)
}

// infoString renders a single information dictionary entry as a string.
func infoString(ctx *model.Context, obj types.Object) (string, bool) {
	o, err := ctx.Dereference(obj)
	if err != nil || o == nil {
		return "", false
	}
	switch v := o.(type) {
	case types.StringLiteral:
		s, err := types.StringLiteralToString(v)
		if err != nil {
			return "", false
		}
		return s, true
	case types.HexLiteral:
		s, err := types.HexLiteralToString(v)
		if err != nil {
			return "", false
		}
		return s, true
	case types.Name:
		return v.Value(), true
	default:
		// Dates, numbers and the like show up verbatim and stay read-only.
		return o.String(), true
	}
}

// Path returns the file path the document was opened from.
func (d *Document) Path() string { return d.path }

// Encrypted reports whether the underlying file carries an encryption dictionary.
func (d *Document) Encrypted() bool { return d.encrypted }

// Keys lists the information dictionary keys present in the document:
// well-known keys first in fixed order, then the remaining keys.
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Value returns the string value stored for key, or "" if absent.
func (d *Document) Value(key string) string { return d.values[key] }

// Reopen parses the file at the document's path again, reusing the password
// that opened it.
func (d *Document) Reopen() (*Document, error) {
	return Parse(d.path, d.password, false)
}

// WriteWithInfo writes a complete copy of the document to path with the given
// information dictionary. Keys mapped to an empty value are omitted from the
// output entirely. Non-well-known keys keep their original raw object so that
// non-textual values (names, dates) survive a round trip unchanged.
func (d *Document) WriteWithInfo(path string, info map[string]string) error {
	dict := types.Dict{}
	for key, value := range info {
		if value == "" {
			continue
		}
		if !IsWellKnown(key) {
			if raw, ok := d.raw[key]; ok {
				dict[key] = raw
				continue
			}
		}
		dict[key] = textStringObject(value)
	}

	if len(dict) == 0 {
		d.ctx.Info = nil
	} else {
		ir, err := d.ctx.IndRefForNewObject(dict)
		if err != nil {
			return fmt.Errorf("new info dict: %w", err)
		}
		d.ctx.Info = ir
	}

	if err := api.WriteContextFile(d.ctx, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// textStringObject encodes s as a PDF text string. Hex literals sidestep
// literal-string escaping; anything beyond ASCII is written as UTF-16BE with
// a byte order mark, per the text string rules.
func textStringObject(s string) types.Object {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return types.HexLiteral(hex.EncodeToString([]byte(s)))
	}
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 0, 2+2*len(units))
	buf = append(buf, 0xFE, 0xFF)
	for _, u := range units {
		buf = append(buf, byte(u>>8), byte(u))
	}
	return types.HexLiteral(hex.EncodeToString(buf))
}
