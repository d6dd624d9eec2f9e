package caldb

import (
	"path/filepath"
	"testing"

	"github.com/banshee-data/eroimgtool/internal/fitscol"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "caldb.sqlite")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newCIFReader() fitscol.ColumnReader {
	return fitscol.NewMemTableReader(map[string]map[string]any{
		"CIF": {
			"CAL_CNAM": []string{"GEOM", "GEOM", "DETMAP"},
			"CAL_FILE": []string{"geom_bad.fits", "geom_001.fits", "detmap_001.fits"},
			"CAL_QUAL": []int32{1, 0, 0},
		},
	})
}

func TestResolveCIFSkipsNonzeroQual(t *testing.T) {
	path, err := ResolveCIF(newCIFReader(), "GEOM")
	if err != nil {
		t.Fatalf("ResolveCIF: %v", err)
	}
	if path != "geom_001.fits" {
		t.Errorf("path = %q, want geom_001.fits", path)
	}
}

func TestResolveCIFMissingComponent(t *testing.T) {
	if _, err := ResolveCIF(newCIFReader(), "NOPE"); err == nil {
		t.Fatal("ResolveCIF for missing component = nil error, want error")
	}
}

func TestStoreResolveCachesAcrossCalls(t *testing.T) {
	s := newTestStore(t)
	r := newCIFReader()

	path, err := s.Resolve(r, 1, "DETMAP")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path != "detmap_001.fits" {
		t.Fatalf("path = %q, want detmap_001.fits", path)
	}

	cached, ok, err := s.Lookup(1, "DETMAP")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || cached != "detmap_001.fits" {
		t.Errorf("Lookup after Resolve = (%q, %v), want (detmap_001.fits, true)", cached, ok)
	}

	// A second Resolve against a reader with no CIF extension must hit
	// the cache rather than erroring out.
	empty := fitscol.NewMemTableReader(map[string]map[string]any{})
	path2, err := s.Resolve(empty, 1, "DETMAP")
	if err != nil {
		t.Fatalf("Resolve (cached): %v", err)
	}
	if path2 != "detmap_001.fits" {
		t.Errorf("path2 = %q, want detmap_001.fits", path2)
	}
}

func TestIndexPath(t *testing.T) {
	got := IndexPath("/caldb", 3)
	want := filepath.Join("/caldb", "data", "erosita", "tm3", "caldb.indx")
	if got != want {
		t.Errorf("IndexPath = %q, want %q", got, want)
	}
}
