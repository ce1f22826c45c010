// Package report persists endpoint lists as plain text, one URL per line.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sink accepts an ordered list of lines under a name
type Sink interface {
	// Write stores lines under name and returns how many were written
	Write(name string, lines []string) (int, error)
}

// WriteError reports that a list could not be persisted. The in-memory
// results are unaffected.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsWriteError checks if an error is a WriteError
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}

// CamerasFile is the default file name for all endpoints of a region
func CamerasFile(code string) string {
	return code + "_cameras.txt"
}

// AccessibleFile is the default file name for the reachable endpoints of a region
func AccessibleFile(code string) string {
	return code + "_accessible.txt"
}

// AccessibleFileFor derives the reachable-list path from a saved list path,
// e.g. "out/US_cameras.txt" becomes "out/US_cameras_accessible.txt".
func AccessibleFileFor(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_accessible" + ext
}

// FileSink writes lists to files under Dir. Relative names are resolved
// against Dir; absolute names are used as given.
type FileSink struct {
	Dir string
}

// Path returns the file a name resolves to
func (s FileSink) Path(name string) string {
	if filepath.IsAbs(name) || s.Dir == "" {
		return name
	}
	return filepath.Join(s.Dir, name)
}

// Write replaces the file with lines, one per line, via a temp file and
// rename so a failed write never leaves a truncated list behind.
func (s FileSink) Write(name string, lines []string) (int, error) {
	path := s.Path(name)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, &WriteError{Path: path, Err: err}
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, &WriteError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
			return 0, &WriteError{Path: path, Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return 0, &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, &WriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return 0, &WriteError{Path: path, Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return 0, &WriteError{Path: path, Err: err}
	}

	return len(lines), nil
}

// ReadLines reads a saved list, skipping blank lines
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}
