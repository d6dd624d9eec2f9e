package fitsio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// card formats one 80-byte FITS header card.
func card(key, val string) string {
	if key == "END" {
		return fmt.Sprintf("%-80s", "END")
	}
	line := fmt.Sprintf("%-8s= %-70s", key, val)
	if len(line) > 80 {
		line = line[:80]
	}
	return fmt.Sprintf("%-80s", line)
}

func padBlock(cards []string) []byte {
	var sb strings.Builder
	for _, c := range cards {
		sb.WriteString(c)
	}
	sb.WriteString(fmt.Sprintf("%-80s", "END"))
	s := sb.String()
	for len(s)%blockSize != 0 {
		s += strings.Repeat(" ", blockSize-len(s)%blockSize)
		break
	}
	return []byte(s)
}

func be32Bytes(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func be16Bytes(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

// buildSingleBintableFile constructs a minimal FITS file: an empty
// primary HDU followed by one BINTABLE extension with an int32 column
// "A" and a float32 column "B", two rows.
func buildSingleBintableFile(t *testing.T) string {
	t.Helper()

	primary := padBlock([]string{
		card("SIMPLE", "T"),
		card("BITPIX", "8"),
		card("NAXIS", "0"),
	})

	rowWidth := 4 + 4 // int32 + float32
	ext := padBlock([]string{
		card("XTENSION", "BINTABLE"),
		card("BITPIX", "8"),
		card("NAXIS", "2"),
		card("NAXIS1", fmt.Sprintf("%d", rowWidth)),
		card("NAXIS2", "2"),
		card("TFIELDS", "2"),
		card("TTYPE1", "A"),
		card("TFORM1", "1J"),
		card("TTYPE2", "B"),
		card("TFORM2", "1E"),
		card("EXTNAME", "MYEXT"),
	})

	var data []byte
	data = append(data, be32Bytes(uint32(int32(42)))...)
	data = append(data, be32Bytes(math.Float32bits(1.5))...)
	data = append(data, be32Bytes(uint32(int32(-7)))...)
	data = append(data, be32Bytes(math.Float32bits(2.5))...)
	for len(data)%blockSize != 0 {
		data = append(data, 0)
	}

	var buf []byte
	buf = append(buf, primary...)
	buf = append(buf, ext...)
	buf = append(buf, data...)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.fits")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadColumnRoundTripsIntAndFloat(t *testing.T) {
	path := buildSingleBintableFile(t)
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := r.MoveHDU("MYEXT"); err != nil {
		t.Fatalf("MoveHDU: %v", err)
	}
	n, err := r.NumRows()
	if err != nil || n != 2 {
		t.Fatalf("NumRows = %d, %v; want 2", n, err)
	}

	var a []int32
	if err := r.ReadColumn("A", &a); err != nil {
		t.Fatalf("ReadColumn A: %v", err)
	}
	if a[0] != 42 || a[1] != -7 {
		t.Errorf("a = %v, want [42 -7]", a)
	}

	var b []float32
	if err := r.ReadColumn("B", &b); err != nil {
		t.Fatalf("ReadColumn B: %v", err)
	}
	if b[0] != 1.5 || b[1] != 2.5 {
		t.Errorf("b = %v, want [1.5 2.5]", b)
	}
}

func TestMoveHDUMissingExtension(t *testing.T) {
	path := buildSingleBintableFile(t)
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := r.MoveHDU("NOSUCH"); err == nil {
		t.Error("expected error for missing extension")
	}
}
