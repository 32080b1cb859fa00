// Package iosafe holds the well-known codex paths and the careful file
// operations around them: atomic writes, timestamped backups, and backup
// cleanup. Writes happen only where explicitly requested; backups are kept
// unless the caller asks otherwise.
package iosafe

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	ConfigTOMLName = "config.toml"
	ConfigJSONName = "config.json"
	ConfigYAMLName = "config.yaml"
	StateFileName  = "linker_config.json"
)

// Home resolves the codex home directory: $CODEX_HOME when set, otherwise
// ~/.codex.
func Home() string {
	if h := os.Getenv("CODEX_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codex"
	}
	return filepath.Join(home, ".codex")
}

func ConfigTOML(home string) string { return filepath.Join(home, ConfigTOMLName) }
func ConfigJSON(home string) string { return filepath.Join(home, ConfigJSONName) }
func ConfigYAML(home string) string { return filepath.Join(home, ConfigYAMLName) }
func StatePath(home string) string  { return filepath.Join(home, StateFileName) }

// Backup renames path to a timestamped sibling (name.ext.20060102-1504.bak)
// when it exists. Returns the backup path, or "" when there was nothing to
// back up.
func Backup(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	stamp := time.Now().Format("20060102-1504")
	bak := fmt.Sprintf("%s.%s.bak", path, stamp)
	if err := os.Rename(path, bak); err != nil {
		return "", fmt.Errorf("backup %s: %w", path, err)
	}
	return bak, nil
}

// AtomicWrite writes text to path via a temp file in the same directory,
// fsyncs, then renames into place. Parent directories are created as needed.
func AtomicWrite(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// AtomicWriteWithBackup backs up an existing file at path, then writes text
// atomically. Returns the backup path when one was made.
func AtomicWriteWithBackup(path, text string) (string, error) {
	bak, err := Backup(path)
	if err != nil {
		return "", err
	}
	if err := AtomicWrite(path, text); err != nil {
		return bak, err
	}
	return bak, nil
}

// DeleteAllBackups removes every *.bak file under home (recursively) and
// returns how many were deleted.
func DeleteAllBackups(home string) (int, error) {
	matches, err := doublestar.Glob(os.DirFS(home), "**/*.bak")
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, m := range matches {
		if err := os.Remove(filepath.Join(home, m)); err == nil {
			deleted++
		}
	}
	return deleted, nil
}

// RemoveConfigs deletes the rendered config files under home. Missing files
// are not an error. Returns the paths actually removed.
func RemoveConfigs(home string) []string {
	var removed []string
	for _, p := range []string{ConfigTOML(home), ConfigJSON(home), ConfigYAML(home)} {
		if err := os.Remove(p); err == nil {
			removed = append(removed, p)
		}
	}
	return removed
}

// Writable reports whether dir (created if absent) accepts new files.
func Writable(dir string) bool {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	probe, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return true
}
