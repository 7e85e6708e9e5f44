package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type record struct {
	Step   int       `json:"step_num"`
	Energy float64   `json:"tot_energy"`
	Coords []float64 `json:"coords"`
}

func newTestLog(t *testing.T) *Log[record] {
	t.Helper()
	l := NewLog[record](filepath.Join(t.TempDir(), "run", "save.json"))
	if err := l.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	return l
}

func appendSteps(t *testing.T, l *Log[record], n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		rec := record{Step: i, Energy: -1.5 * float64(i), Coords: []float64{float64(i), 0.5}}
		if err := l.Append(rec); err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
	}
}

func TestLog_AppendLast(t *testing.T) {
	l := newTestLog(t)
	appendSteps(t, l, 4)

	last, err := l.Last()
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	want := record{Step: 3, Energy: -4.5, Coords: []float64{3, 0.5}}
	if diff := cmp.Diff(want, last); diff != "" {
		t.Errorf("Last mismatch (-want +got):\n%s", diff)
	}

	all, err := l.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 records, got %d", len(all))
	}
	for i, rec := range all {
		if rec.Step != i {
			t.Errorf("record %d has step %d", i, rec.Step)
		}
	}
}

func TestLog_OneRecordPerLine(t *testing.T) {
	l := newTestLog(t)
	appendSteps(t, l, 3)

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 3 {
		t.Errorf("expected 3 lines, got %d", lines)
	}
}

func TestLog_ResetTruncates(t *testing.T) {
	l := newTestLog(t)
	appendSteps(t, l, 2)
	if err := l.Reset(); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Last(); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestLog_MissingFile(t *testing.T) {
	l := NewLog[record](filepath.Join(t.TempDir(), "nope.json"))
	if _, err := l.Last(); !errors.Is(err, ErrCheckpointIO) {
		t.Errorf("expected ErrCheckpointIO, got %v", err)
	}
}

func writeFragment(t *testing.T, l *Log[record], fragment string) {
	t.Helper()
	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(fragment); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func TestLog_TrailingFragmentIgnored(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
	}{
		{"truncated json", `{"step_num":3,"tot_en`},
		{"complete json without newline", `{"step_num":3,"tot_energy":1}`},
		{"garbage line", "\x00\x00\x00\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLog(t)
			appendSteps(t, l, 3)
			writeFragment(t, l, tt.fragment)

			last, err := l.Last()
			if err != nil {
				t.Fatalf("Last: %v", err)
			}
			if last.Step != 2 {
				t.Errorf("expected step 2, got %d", last.Step)
			}
		})
	}
}

func TestLog_RepairThenAppend(t *testing.T) {
	l := newTestLog(t)
	appendSteps(t, l, 2)
	writeFragment(t, l, `{"step_num":2,"tot`)

	changed, err := l.Repair()
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if !changed {
		t.Error("expected Repair to truncate the fragment")
	}

	if err := l.Append(record{Step: 2}); err != nil {
		t.Fatal(err)
	}
	all, err := l.All()
	if err != nil {
		t.Fatalf("All after repair: %v", err)
	}
	if len(all) != 3 || all[2].Step != 2 {
		t.Errorf("unexpected records after repair: %+v", all)
	}

	changed, err = l.Repair()
	if err != nil || changed {
		t.Errorf("clean log should not change: %v, %v", changed, err)
	}
}

func TestLog_CorruptionBeforeEnd(t *testing.T) {
	l := newTestLog(t)
	appendSteps(t, l, 1)
	writeFragment(t, l, "not json\n")
	appendSteps(t, l, 1)

	_, err := l.Last()
	if !errors.Is(err, ErrCorrupt) || !errors.Is(err, ErrCheckpointIO) {
		t.Errorf("expected ErrCorrupt wrapped in ErrCheckpointIO, got %v", err)
	}
}

func TestLog_ArchiveRestore(t *testing.T) {
	l := newTestLog(t)
	appendSteps(t, l, 50)

	want, err := l.All()
	if err != nil {
		t.Fatal(err)
	}

	archive := filepath.Join(t.TempDir(), "save.json.zst")
	size, err := l.Archive(archive)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if size <= 0 {
		t.Errorf("expected positive archive size, got %d", size)
	}

	restored := NewLog[record](filepath.Join(t.TempDir(), "restored.json"))
	if err := restored.Restore(archive); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got, err := restored.All()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("restored log differs (-want +got):\n%s", diff)
	}
}
