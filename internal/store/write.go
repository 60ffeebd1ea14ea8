package store

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
)

// writeAtomic persists v as newline-terminated pretty JSON. The payload
// goes to a temp file in the same directory, is fsynced, and is renamed
// over path. When the direct rename fails (some platforms restrict
// replacing an existing file) the current file is moved aside to a
// backup first, then the temp file takes its place.
func writeAtomic(path string, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	payload = append(payload, '\n')

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%d.%x.tmp", base, os.Getpid(), rand.Uint64()))

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err == nil {
		return nil
	}

	// Rename-over-existing fallback.
	backupPath := filepath.Join(dir, fmt.Sprintf(".%s.%d.bak", base, os.Getpid()))
	_ = os.Rename(path, backupPath) // may not exist
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace document: %w", err)
	}
	_ = os.Remove(backupPath)
	return nil
}
