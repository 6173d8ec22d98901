package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// backupName returns the first unused backup name for path: path.bak, then
// path.bak1, path.bak2, and so on. An existing backup is never reused.
func backupName(path string) string {
	candidate := path + ".bak"
	for n := 1; ; n++ {
		if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
		candidate = fmt.Sprintf("%s.bak%d", path, n)
	}
}

// createBackup renames the file at path to the next free backup name and
// returns that name.
func createBackup(path string) (string, error) {
	target := backupName(path)
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	return target, nil
}
