package enddate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

// writeState seeds dir with a state file holding the given raw entries.
func writeState(t *testing.T, dir string, entries map[string]string) {
	t.Helper()
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), data, 0600); err != nil {
		t.Fatal(err)
	}
}

func TestLastEndDate_NoHistory(t *testing.T) {
	store := &Store{SearchDirs: []string{t.TempDir(), t.TempDir()}}

	_, ok, err := store.LastEndDate(42)
	if err != nil {
		t.Fatalf("LastEndDate: %v", err)
	}
	if ok {
		t.Error("found an end date with no state files present")
	}
}

func TestLastEndDate_FirstMatchWins(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeState(t, first, map[string]string{"42": "2016-01-04T00:00:00+01:00"})
	writeState(t, second, map[string]string{"42": "2020-06-15T00:00:00Z"})

	store := &Store{SearchDirs: []string{first, second}}
	got, ok, err := store.LastEndDate(42)
	if err != nil {
		t.Fatalf("LastEndDate: %v", err)
	}
	if !ok {
		t.Fatal("no end date found")
	}
	want := time.Date(2016, 1, 4, 0, 0, 0, 0, time.FixedZone("", 3600))
	if !got.Equal(want) {
		t.Errorf("end date = %v, want the first file's value %v", got, want)
	}
}

func TestLastEndDate_SearchContinuesPastMissingKey(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeState(t, first, map[string]string{"7": "2016-01-04T00:00:00Z"})
	writeState(t, second, map[string]string{"42": "2016-02-01T00:00:00Z"})

	store := &Store{SearchDirs: []string{first, second}}
	got, ok, err := store.LastEndDate(42)
	if err != nil {
		t.Fatalf("LastEndDate: %v", err)
	}
	if !ok {
		t.Fatal("key in a later search dir was not found")
	}
	if got.Day() != 1 {
		t.Errorf("end date = %v, want the second file's value", got)
	}
}

func TestLastEndDate_MalformedState(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	// A valid later file must not mask the malformed one.
	valid := t.TempDir()
	writeState(t, valid, map[string]string{"42": "2016-02-01T00:00:00Z"})

	store := &Store{SearchDirs: []string{dir, valid}}
	_, _, err := store.LastEndDate(42)
	if err == nil {
		t.Fatal("malformed state file was silently skipped")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Errorf("error = %v, want a parse error", err)
	}
}

func TestLastEndDate_BadTimestamp(t *testing.T) {
	dir := t.TempDir()
	writeState(t, dir, map[string]string{"42": "yesterday-ish"})

	store := &Store{SearchDirs: []string{dir}}
	_, _, err := store.LastEndDate(42)
	if err == nil {
		t.Fatal("unparseable timestamp was silently skipped")
	}
}

func TestSetThenGet(t *testing.T) {
	dir := t.TempDir()
	store := &Store{SearchDirs: []string{dir}, WriteDir: dir}

	want := time.Date(2016, 2, 1, 15, 4, 5, 500_000_000, time.FixedZone("", 3600))
	if err := store.SetLastEndDate(42, want); err != nil {
		t.Fatalf("SetLastEndDate: %v", err)
	}

	got, ok, err := store.LastEndDate(42)
	if err != nil {
		t.Fatalf("LastEndDate: %v", err)
	}
	if !ok {
		t.Fatal("stored end date not found")
	}
	// Round trip is exact to the second, including the timezone offset.
	if !got.Equal(want.Truncate(time.Second)) {
		t.Errorf("end date = %v, want %v", got, want.Truncate(time.Second))
	}
	if gotStr, wantStr := got.Format(time.RFC3339), "2016-02-01T15:04:05+01:00"; gotStr != wantStr {
		t.Errorf("formatted end date = %q, want %q", gotStr, wantStr)
	}
}

func TestSet_PreservesUnrelatedEntries(t *testing.T) {
	dir := t.TempDir()
	writeState(t, dir, map[string]string{"7": "2015-12-24T00:00:00Z"})

	store := &Store{SearchDirs: []string{dir}, WriteDir: dir}
	if err := store.SetLastEndDate(42, time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("SetLastEndDate: %v", err)
	}

	entries, err := readEntries(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatal(err)
	}
	if entries["7"] != "2015-12-24T00:00:00Z" {
		t.Errorf("unrelated entry was not preserved: %v", entries)
	}
	if entries["42"] == "" {
		t.Errorf("new entry missing: %v", entries)
	}
}

func TestSet_Overwrites(t *testing.T) {
	dir := t.TempDir()
	store := &Store{SearchDirs: []string{dir}, WriteDir: dir}

	if err := store.SetLastEndDate(42, time.Date(2016, 1, 4, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if err := store.SetLastEndDate(42, time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	got, ok, err := store.LastEndDate(42)
	if err != nil || !ok {
		t.Fatalf("LastEndDate: ok=%v err=%v", ok, err)
	}
	if got.Month() != time.February {
		t.Errorf("end date = %v, want the later value", got)
	}
}

func TestSet_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "toggl-fetch")
	store := &Store{SearchDirs: []string{dir}, WriteDir: dir}

	if err := store.SetLastEndDate(42, time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("SetLastEndDate: %v", err)
	}
	if _, _, err := store.LastEndDate(42); err != nil {
		t.Fatalf("LastEndDate after create: %v", err)
	}
}

func TestSet_LeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := &Store{SearchDirs: []string{dir}, WriteDir: dir}

	if err := store.SetLastEndDate(42, time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	names, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0].Name() != fileName {
		t.Errorf("unexpected files after write: %v", names)
	}
}

func TestEntries_FirstMatchUnion(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeState(t, first, map[string]string{
		"1": "2016-01-01T00:00:00Z",
		"2": "2016-01-02T00:00:00Z",
	})
	writeState(t, second, map[string]string{
		"2": "2099-01-01T00:00:00Z", // shadowed by the first file
		"3": "2016-01-03T00:00:00Z",
	})

	store := &Store{SearchDirs: []string{first, second}}
	entries, err := store.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}

	// Sorted by workspace id.
	for i, want := range []int64{1, 2, 3} {
		if entries[i].WorkspaceID != want {
			t.Errorf("entries[%d].WorkspaceID = %d, want %d", i, entries[i].WorkspaceID, want)
		}
	}

	if entries[1].EndDate.Year() != 2016 {
		t.Errorf("entry for workspace 2 = %v, want the first file's value", entries[1].EndDate)
	}
	if entries[1].Source != filepath.Join(first, fileName) {
		t.Errorf("entry for workspace 2 sourced from %q, want the first file", entries[1].Source)
	}
	if entries[2].EndDate.Day() != 3 {
		t.Errorf("entry for workspace 3 = %v", entries[2].EndDate)
	}
	if entries[2].Source != filepath.Join(second, fileName) {
		t.Errorf("entry for workspace 3 sourced from %q, want the second file", entries[2].Source)
	}
}

func TestDetermineStartDate_Stored(t *testing.T) {
	dir := t.TempDir()
	writeState(t, dir, map[string]string{"42": "2016-01-31T23:30:00+01:00"})

	store := &Store{SearchDirs: []string{dir}}
	got, err := store.DetermineStartDate(42)
	if err != nil {
		t.Fatalf("DetermineStartDate: %v", err)
	}

	// One calendar day later, time of day and offset preserved.
	want := time.Date(2016, 2, 1, 23, 30, 0, 0, time.FixedZone("", 3600))
	if !got.Equal(want) {
		t.Errorf("start date = %v, want %v", got, want)
	}
	if got.Hour() != 23 || got.Minute() != 30 {
		t.Errorf("time of day not preserved: %v", got)
	}
}

func TestDetermineStartDate_NoHistory(t *testing.T) {
	now := time.Date(2016, 2, 1, 12, 0, 0, 0, time.Local)
	store := &Store{
		SearchDirs: []string{t.TempDir()},
		Clock:      func() time.Time { return now },
	}

	got, err := store.DetermineStartDate(42)
	if err != nil {
		t.Fatalf("DetermineStartDate: %v", err)
	}
	if want := now.AddDate(0, 0, -28); !got.Equal(want) {
		t.Errorf("start date = %v, want now-28d %v", got, want)
	}
}

func TestNewStore(t *testing.T) {
	home := t.TempDir()
	sys := t.TempDir()
	t.Setenv("XDG_DATA_HOME", home)
	t.Setenv("XDG_DATA_DIRS", sys)
	xdg.Reload()

	store := NewStore()

	wantHome := filepath.Join(home, "toggl-fetch")
	if store.WriteDir != wantHome {
		t.Errorf("WriteDir = %q, want %q", store.WriteDir, wantHome)
	}
	if len(store.SearchDirs) < 2 || store.SearchDirs[0] != wantHome {
		t.Fatalf("SearchDirs = %v, want user dir first", store.SearchDirs)
	}
	if store.SearchDirs[1] != filepath.Join(sys, "toggl-fetch") {
		t.Errorf("SearchDirs[1] = %q, want system data dir", store.SearchDirs[1])
	}
}
