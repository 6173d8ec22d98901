package session

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBackupNameProbesFreeSuffix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.pdf")
	touch(t, path)

	if got, want := backupName(path), path+".bak"; got != want {
		t.Errorf("backupName = %s, want %s", got, want)
	}

	touch(t, path+".bak")
	if got, want := backupName(path), path+".bak1"; got != want {
		t.Errorf("backupName = %s, want %s", got, want)
	}

	touch(t, path+".bak1")
	touch(t, path+".bak2")
	if got, want := backupName(path), path+".bak3"; got != want {
		t.Errorf("backupName = %s, want %s", got, want)
	}
}

func TestCreateBackupNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.pdf")

	// Repeated backups produce distinct names with increasing suffixes.
	want := []string{path + ".bak", path + ".bak1", path + ".bak2"}
	for i, wantName := range want {
		if err := os.WriteFile(path, []byte(fmt.Sprintf("gen %d", i)), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := createBackup(path)
		if err != nil {
			t.Fatalf("createBackup: %v", err)
		}
		if got != wantName {
			t.Errorf("backup %d = %s, want %s", i, got, wantName)
		}
	}
	for i, name := range want {
		data, err := os.ReadFile(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(data) != fmt.Sprintf("gen %d", i) {
			t.Errorf("%s holds %q, want generation %d", name, data, i)
		}
	}

	// The original was renamed away each time.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("original still present after backup rename")
	}
}

func TestCreateBackupMissingSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.pdf")
	if _, err := createBackup(path); err == nil {
		t.Fatal("createBackup succeeded on a missing file")
	}
}
