// Package store implements the on-disk cache of installed runtime modules.
//
// Modules live at <home>/.rchidrun/plugins/<language>/runtime.wasm, one per
// language identifier, no versioning. Commits go through a temporary file
// and an atomic rename, so a lookup either sees a complete module or
// nothing. The store trusts validation done at install time and never
// re-checks file contents.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrMissingHome is returned when the user's home directory is not
	// configured. It is checked before any filesystem access.
	ErrMissingHome = errors.New("HOME not set")
	// ErrWrite is returned when committing a module to disk fails.
	ErrWrite = errors.New("cannot write module")
)

const moduleFile = "runtime.wasm"

// Store is a filesystem cache of runtime modules keyed by language.
type Store struct {
	root string // plugins directory
}

// New returns a Store rooted under the given home directory.
func New(home string) (*Store, error) {
	if home == "" {
		return nil, ErrMissingHome
	}
	return &Store{root: filepath.Join(home, ".rchidrun", "plugins")}, nil
}

// Path returns the canonical module path for a language. The path is fully
// determined by the identifier whether or not a module is installed.
func (s *Store) Path(language string) string {
	return filepath.Join(s.root, language, moduleFile)
}

// Lookup reports whether a runtime module is installed for the language,
// returning its path when present. Only existence is checked.
func (s *Store) Lookup(language string) (string, bool) {
	path := s.Path(language)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// Commit writes module bytes to a temporary file in the language's
// directory, then renames it to the canonical path. The rename is atomic:
// a concurrent or interrupted install never leaves a partial module
// visible at the path Lookup checks.
func (s *Store) Commit(language string, module []byte) (string, error) {
	dir := filepath.Join(s.root, language)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create plugin dir: %v", ErrWrite, err)
	}

	tmp, err := os.CreateTemp(dir, moduleFile+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp module: %v", ErrWrite, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(module); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}

	path := s.Path(language)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: publish module: %v", ErrWrite, err)
	}
	return path, nil
}

// Installed returns the languages with a cached runtime module, in
// directory enumeration order. A directory without a module file (e.g.
// after external deletion) is not listed; a missing plugins directory is
// an empty result, not an error.
func (s *Store) Installed() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read plugins dir: %w", err)
	}

	var langs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok := s.Lookup(entry.Name()); ok {
			langs = append(langs, entry.Name())
		}
	}
	return langs, nil
}
