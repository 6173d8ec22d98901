// Package pdftest builds small PDF files for tests. The generated documents
// carry a single empty page plus an information dictionary and pass relaxed
// validation.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Sample returns the bytes of a one-page PDF whose information dictionary
// holds the given entries. Keys are emitted in sorted order.
func Sample(info map[string]string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	var offsets []int
	add := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	add("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	add("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	add("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << >> >>\nendobj\n")

	var sb strings.Builder
	sb.WriteString("4 0 obj\n<<")
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " /%s (%s)", k, escape(info[k]))
	}
	sb.WriteString(" >>\nendobj\n")
	add(sb.String())

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 4 0 R >>\n", len(offsets)+1)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

// escape protects the characters with special meaning in literal strings.
func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// WriteSample writes a sample PDF to dir and returns its path.
func WriteSample(t *testing.T, dir, name string, info map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Sample(info), 0o644); err != nil {
		t.Fatalf("write sample pdf: %v", err)
	}
	return path
}

// WriteEncryptedSample writes a sample PDF encrypted with the given passwords
// to dir and returns its path.
func WriteEncryptedSample(t *testing.T, dir, name, userPW, ownerPW string, info map[string]string) string {
	t.Helper()
	plain := WriteSample(t, dir, "plain-"+name, info)
	path := filepath.Join(dir, name)
	conf := model.NewAESConfiguration(userPW, ownerPW, 256)
	if err := api.EncryptFile(plain, path, conf); err != nil {
		t.Fatalf("encrypt sample pdf: %v", err)
	}
	if err := os.Remove(plain); err != nil {
		t.Fatalf("remove plain sample: %v", err)
	}
	return path
}
