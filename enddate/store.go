// Package enddate persists the last requested report end date per workspace
// and derives the next run's start date from it.
//
// State lives in a single JSON object mapping decimal workspace-id strings to
// RFC 3339 timestamps. Reads walk an XDG-style search path, most specific
// first; writes always target the user data directory and replace the file
// atomically.
package enddate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// appDirName is the application subdirectory under each XDG data directory.
const appDirName = "toggl-fetch"

// fileName is the state file name inside appDirName.
const fileName = "end_dates.json"

// Store reads and writes per-workspace end dates.
//
// SearchDirs is consulted in order on reads; the first file containing the
// requested workspace id is authoritative and later files are never merged.
// WriteDir is the single canonical location for writes.
type Store struct {
	SearchDirs []string
	WriteDir   string

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// NewStore builds a Store over the XDG data directories: the user data home
// first, then each system data directory.
func NewStore() *Store {
	home := filepath.Join(xdg.DataHome, appDirName)
	search := []string{home}
	for _, dir := range xdg.DataDirs {
		search = append(search, filepath.Join(dir, appDirName))
	}
	return &Store{SearchDirs: search, WriteDir: home}
}

func (s *Store) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// WritePath returns the canonical state file path writes target.
func (s *Store) WritePath() string {
	return filepath.Join(s.WriteDir, fileName)
}

// SearchPaths returns the state file candidates in search order.
func (s *Store) SearchPaths() []string {
	paths := make([]string, 0, len(s.SearchDirs))
	for _, dir := range s.SearchDirs {
		paths = append(paths, filepath.Join(dir, fileName))
	}
	return paths
}

// LastEndDate returns the stored end date for a workspace. The second return
// is false when no candidate file contains the workspace id; that is the
// "no history" state, not an error. Malformed state files are errors, never
// skipped.
func (s *Store) LastEndDate(workspaceID int64) (time.Time, bool, error) {
	key := strconv.FormatInt(workspaceID, 10)
	for _, dir := range s.SearchDirs {
		entries, err := readEntries(filepath.Join(dir, fileName))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return time.Time{}, false, err
		}

		raw, ok := entries[key]
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("end date for workspace %s: %w", key, err)
		}
		return t, true, nil
	}
	return time.Time{}, false, nil
}

// SetLastEndDate records date as the last end date for a workspace. Existing
// entries for other workspaces in the canonical file are preserved. The
// timestamp keeps its timezone offset.
func (s *Store) SetLastEndDate(workspaceID int64, date time.Time) error {
	path := s.WritePath()

	entries, err := readEntries(path)
	if errors.Is(err, os.ErrNotExist) {
		entries = map[string]string{}
	} else if err != nil {
		return err
	}
	entries[strconv.FormatInt(workspaceID, 10)] = date.Format(time.RFC3339)

	if err := os.MkdirAll(s.WriteDir, 0700); err != nil {
		return fmt.Errorf("create data dir %s: %w", s.WriteDir, err)
	}
	return writeEntries(path, entries)
}

// Entry is one stored end date, with the file it came from.
type Entry struct {
	WorkspaceID int64     `json:"workspace_id"`
	EndDate     time.Time `json:"end_date"`
	Source      string    `json:"source"`
}

// Entries returns every stored end date across the search path, with the
// file each came from, sorted by workspace id. Where several files carry the
// same id, the earliest file in search order wins, matching LastEndDate.
func (s *Store) Entries() ([]Entry, error) {
	byID := map[int64]Entry{}
	for _, dir := range s.SearchDirs {
		path := filepath.Join(dir, fileName)
		entries, err := readEntries(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}

		for key, raw := range entries {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("workspace id %q in %s: %w", key, path, err)
			}
			if _, seen := byID[id]; seen {
				continue
			}
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, fmt.Errorf("end date for workspace %s in %s: %w", key, path, err)
			}
			byID[id] = Entry{WorkspaceID: id, EndDate: t, Source: path}
		}
	}

	out := make([]Entry, 0, len(byID))
	for _, e := range byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkspaceID < out[j].WorkspaceID })
	return out, nil
}

// readEntries reads and parses a state file. Missing files surface as
// os.ErrNotExist for the caller to distinguish from malformed state.
func readEntries(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if entries == nil {
		entries = map[string]string{}
	}
	return entries, nil
}

// writeEntries atomically replaces a state file. A concurrent reader sees
// either the old or the new mapping, never a partial write.
func writeEntries(path string, entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
