// Package fileutil stages output files beside their destination and commits
// them with renames, and serializes runs that target the same output.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Staged is a temporary file in the destination's directory. Its name keeps
// the destination extension so tools that pick a container by extension
// behave the same as for the final path.
type Staged struct {
	final string
	temp  string
	done  bool
}

// Stage reserves a hidden temp file beside path. The caller writes to
// TempPath and then calls Commit or Discard.
func Stage(path string) (*Staged, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	f, err := os.CreateTemp(dir, "."+strings.TrimSuffix(base, ext)+".*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp for %s: %w", base, err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return nil, fmt.Errorf("close temp for %s: %w", base, err)
	}
	return &Staged{final: path, temp: name}, nil
}

// Path is the destination.
func (s *Staged) Path() string { return s.final }

// TempPath is where content should be written before Commit.
func (s *Staged) TempPath() string { return s.temp }

// Commit renames the temp file onto the destination.
func (s *Staged) Commit() error {
	if s.done {
		return nil
	}
	if err := os.Chmod(s.temp, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", s.temp, err)
	}
	if err := os.Rename(s.temp, s.final); err != nil {
		return fmt.Errorf("rename %s: %w", s.final, err)
	}
	s.done = true
	return nil
}

// Discard removes the temp file. It is a no-op after Commit.
func (s *Staged) Discard() {
	if s == nil || s.done {
		return
	}
	_ = os.Remove(s.temp)
	s.done = true
}

// Group commits several staged files together.
type Group struct {
	files []*Staged
}

// Stage adds a new staged file for path to the group.
func (g *Group) Stage(path string) (*Staged, error) {
	s, err := Stage(path)
	if err != nil {
		return nil, err
	}
	g.files = append(g.files, s)
	return s, nil
}

// Commit renames every staged file onto its destination. Destinations are
// checked first, and if any rename fails the files already committed are
// removed and whatever they replaced is restored.
func (g *Group) Commit() error {
	for _, s := range g.files {
		if info, err := os.Lstat(s.final); err == nil && info.IsDir() {
			g.Discard()
			return fmt.Errorf("commit %s: destination is a directory", s.final)
		}
	}

	var committed []*Staged
	backups := make(map[*Staged]string, len(g.files))
	rollback := func() {
		for i := len(committed) - 1; i >= 0; i-- {
			s := committed[i]
			_ = os.Remove(s.final)
			if backup, ok := backups[s]; ok {
				_ = os.Rename(backup, s.final)
				delete(backups, s)
			}
		}
		for s, backup := range backups {
			_ = os.Rename(backup, s.final)
		}
		g.Discard()
	}

	for _, s := range g.files {
		if _, err := os.Lstat(s.final); err == nil {
			backup := backupPath(s.final)
			if err := os.Rename(s.final, backup); err != nil {
				rollback()
				return fmt.Errorf("back up %s: %w", s.final, err)
			}
			backups[s] = backup
		}
		if err := s.Commit(); err != nil {
			if backup, ok := backups[s]; ok {
				_ = os.Rename(backup, s.final)
				delete(backups, s)
			}
			rollback()
			return err
		}
		committed = append(committed, s)
	}

	var errs []error
	for _, backup := range backups {
		if err := os.Remove(backup); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func backupPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".bak")
}

// Discard removes every uncommitted temp file.
func (g *Group) Discard() {
	for _, s := range g.files {
		s.Discard()
	}
}
