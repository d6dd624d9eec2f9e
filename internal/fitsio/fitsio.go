// Package fitsio is a minimal FITS reader: enough of the standard
// (80-byte header cards in 2880-byte blocks, primary+extension HDUs,
// IMAGE and BINTABLE data) to satisfy internal/fitscol.ColumnReader
// and load the mask/DETMAP image products off disk. spec.md treats
// column-oriented FITS I/O as an interface-only concern; this is the
// concrete binding cmd/eroimgtool needs to actually run against a
// file, not a general-purpose FITS library.
package fitsio

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/eroimgtool/internal/grid"
	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

const blockSize = 2880

type column struct {
	name     string
	code     byte // 'I','J','E','D','A'
	repeat   int
	width    int // bytes
	offset   int // byte offset within a row
}

type hdu struct {
	name       string
	bintable   bool
	bitpix     int
	naxis      []int
	dataOffset int64
	nrows      int
	rowWidth   int
	cols       []column
	bscale     float64
	bzero      float64
}

// Reader is a ColumnReader backed by an on-disk FITS file, read once
// into memory at Open time.
type Reader struct {
	data    []byte
	hdus    []hdu
	byName  map[string]int
	current int
}

// Open reads and indexes every HDU of the file at path.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pipeerr.IO("reading FITS file "+path, err)
	}

	r := &Reader{data: data, byName: map[string]int{}, current: -1}
	off := int64(0)
	first := true
	for off < int64(len(data)) {
		h, next, err := parseHDU(data, off, first)
		if err != nil {
			return nil, err
		}
		first = false
		r.hdus = append(r.hdus, h)
		if h.name != "" {
			r.byName[strings.ToUpper(h.name)] = len(r.hdus) - 1
		}
		off = next
		if next <= 0 || next >= int64(len(data)) {
			break
		}
	}
	return r, nil
}

func parseHDU(data []byte, off int64, primary bool) (hdu, int64, error) {
	cards := map[string]string{}
	var order []string
	pos := off
	done := false
	for !done {
		if pos+blockSize > int64(len(data)) {
			return hdu{}, 0, pipeerr.IO("truncated FITS header block", nil)
		}
		block := data[pos : pos+blockSize]
		for c := 0; c < blockSize/80; c++ {
			card := string(block[c*80 : c*80+80])
			key := strings.TrimSpace(card[:8])
			if key == "END" {
				done = true
				break
			}
			if key == "" || key == "COMMENT" || key == "HISTORY" {
				continue
			}
			if len(card) > 10 && card[8:10] == "= " {
				val := strings.TrimSpace(card[10:])
				if i := strings.Index(val, "/"); i >= 0 && !strings.HasPrefix(val, "'") {
					val = strings.TrimSpace(val[:i])
				}
				val = strings.Trim(val, "'")
				val = strings.TrimSpace(val)
				cards[key] = val
				order = append(order, key)
			}
		}
		pos += blockSize
	}
	headerEnd := pos

	h := hdu{dataOffset: headerEnd}
	h.name = cards["EXTNAME"]
	h.bitpix, _ = strconv.Atoi(cards["BITPIX"])
	naxis, _ := strconv.Atoi(cards["NAXIS"])
	for i := 1; i <= naxis; i++ {
		n, _ := strconv.Atoi(cards[fmt.Sprintf("NAXIS%d", i)])
		h.naxis = append(h.naxis, n)
	}
	h.bscale = 1
	if v, ok := cards["BSCALE"]; ok {
		h.bscale, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := cards["BZERO"]; ok {
		h.bzero, _ = strconv.ParseFloat(v, 64)
	}

	xtension := cards["XTENSION"]
	h.bintable = xtension == "BINTABLE"

	var dataSize int64
	if h.bintable {
		rowWidth, _ := strconv.Atoi(cards["NAXIS1"])
		nrows, _ := strconv.Atoi(cards["NAXIS2"])
		tfields, _ := strconv.Atoi(cards["TFIELDS"])
		h.rowWidth = rowWidth
		h.nrows = nrows

		offset := 0
		for i := 1; i <= tfields; i++ {
			ttype := cards[fmt.Sprintf("TTYPE%d", i)]
			tform := cards[fmt.Sprintf("TFORM%d", i)]
			repeat, code, width, err := parseTForm(tform)
			if err != nil {
				return hdu{}, 0, err
			}
			h.cols = append(h.cols, column{name: ttype, code: code, repeat: repeat, width: width, offset: offset})
			offset += width
		}
		dataSize = int64(rowWidth) * int64(nrows)
	} else if len(h.naxis) > 0 {
		count := int64(1)
		for _, n := range h.naxis {
			count *= int64(n)
		}
		dataSize = count * int64(abs(h.bitpix)/8)
	}

	next := headerEnd + align2880(dataSize)
	return h, next, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func align2880(n int64) int64 {
	if n%blockSize == 0 {
		return n
	}
	return n + (blockSize - n%blockSize)
}

// parseTForm decodes a binary table TFORMn value ("rT", default r=1),
// returning the element count, type code and the field's total byte
// width.
func parseTForm(tform string) (repeat int, code byte, width int, err error) {
	tform = strings.TrimSpace(tform)
	if tform == "" {
		return 0, 0, 0, pipeerr.Decode("empty TFORM", nil)
	}
	i := 0
	for i < len(tform) && tform[i] >= '0' && tform[i] <= '9' {
		i++
	}
	repeat = 1
	if i > 0 {
		repeat, _ = strconv.Atoi(tform[:i])
	}
	if i >= len(tform) {
		return 0, 0, 0, pipeerr.Decode("malformed TFORM "+tform, nil)
	}
	code = tform[i]

	var elemSize int
	switch code {
	case 'L', 'B', 'A':
		elemSize = 1
	case 'I':
		elemSize = 2
	case 'J', 'E':
		elemSize = 4
	case 'K', 'D':
		elemSize = 8
	default:
		return 0, 0, 0, pipeerr.Decode("unsupported TFORM code "+string(code), nil)
	}
	return repeat, code, repeat * elemSize, nil
}

// hduIndex resolves name to an HDU index; the empty name means the
// primary HDU, since it never carries an EXTNAME of its own.
func (r *Reader) hduIndex(name string) (int, error) {
	if name == "" {
		if len(r.hdus) == 0 {
			return 0, pipeerr.IO("FITS file has no HDUs", nil)
		}
		return 0, nil
	}
	idx, ok := r.byName[strings.ToUpper(name)]
	if !ok {
		return 0, pipeerr.IO(fmt.Sprintf("extension %q not found", name), nil)
	}
	return idx, nil
}

// MoveHDU implements fitscol.ColumnReader.
func (r *Reader) MoveHDU(name string) error {
	idx, ok := r.byName[strings.ToUpper(name)]
	if !ok {
		return pipeerr.IO(fmt.Sprintf("extension %q not found", name), nil)
	}
	r.current = idx
	return nil
}

// NumRows implements fitscol.ColumnReader.
func (r *Reader) NumRows() (int, error) {
	if r.current < 0 {
		return 0, pipeerr.IO("no current extension", nil)
	}
	return r.hdus[r.current].nrows, nil
}

func (r *Reader) findColumn(name string) (*column, *hdu, error) {
	if r.current < 0 {
		return nil, nil, pipeerr.IO("no current extension", nil)
	}
	h := &r.hdus[r.current]
	for i := range h.cols {
		if h.cols[i].name == name {
			return &h.cols[i], h, nil
		}
	}
	return nil, nil, pipeerr.IO(fmt.Sprintf("column %q not found", name), nil)
}

// ReadColumn implements fitscol.ColumnReader, decoding big-endian FITS
// binary table values into the requested Go slice type.
func (r *Reader) ReadColumn(name string, dst any) error {
	col, h, err := r.findColumn(name)
	if err != nil {
		return err
	}

	base := h.dataOffset
	switch d := dst.(type) {
	case *[]int16:
		out := make([]int16, h.nrows)
		for i := 0; i < h.nrows; i++ {
			off := base + int64(i*h.rowWidth+col.offset)
			out[i] = int16(be16(r.data[off:]))
		}
		*d = out
	case *[]int32:
		out := make([]int32, h.nrows)
		for i := 0; i < h.nrows; i++ {
			off := base + int64(i*h.rowWidth+col.offset)
			out[i] = int32(be32(r.data[off:]))
		}
		*d = out
	case *[]float32:
		out := make([]float32, h.nrows)
		for i := 0; i < h.nrows; i++ {
			off := base + int64(i*h.rowWidth+col.offset)
			out[i] = math.Float32frombits(be32(r.data[off:]))
		}
		*d = out
	case *[]float64:
		out := make([]float64, h.nrows)
		for i := 0; i < h.nrows; i++ {
			off := base + int64(i*h.rowWidth+col.offset)
			out[i] = math.Float64frombits(be64(r.data[off:]))
		}
		*d = out
	case *[]string:
		out := make([]string, h.nrows)
		for i := 0; i < h.nrows; i++ {
			off := base + int64(i*h.rowWidth+col.offset)
			out[i] = strings.TrimRight(string(r.data[off:off+int64(col.width)]), " \x00")
		}
		*d = out
	default:
		return pipeerr.IO(fmt.Sprintf("unsupported destination type %T for column %q", dst, name), nil)
	}
	return nil
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
func be64(b []byte) uint64 {
	return uint64(be32(b))<<32 | uint64(be32(b[4:]))
}

// ReadImageInt reads a 2-D IMAGE extension as an int image, applying
// BSCALE/BZERO if present.
func (r *Reader) ReadImageInt(name string) (*grid.Image[int], error) {
	idx, err := r.hduIndex(name)
	if err != nil {
		return nil, err
	}
	h := r.hdus[idx]
	if len(h.naxis) != 2 {
		return nil, pipeerr.Decode(fmt.Sprintf("extension %q is not a 2-D image", name), nil)
	}
	xw, yw := h.naxis[0], h.naxis[1]
	img := grid.New[int](xw, yw)
	elemBytes := abs(h.bitpix) / 8
	for i := 0; i < xw*yw; i++ {
		off := h.dataOffset + int64(i*elemBytes)
		var raw float64
		switch h.bitpix {
		case 16:
			raw = float64(int16(be16(r.data[off:])))
		case 32:
			raw = float64(int32(be32(r.data[off:])))
		case -32:
			raw = float64(math.Float32frombits(be32(r.data[off:])))
		case -64:
			raw = math.Float64frombits(be64(r.data[off:]))
		}
		img.Arr[i] = int(raw*h.bscale + h.bzero)
	}
	return img, nil
}

// ReadImageFloat32 reads a 2-D IMAGE extension as a float32 image,
// applying BSCALE/BZERO if present.
func (r *Reader) ReadImageFloat32(name string) (*grid.Image[float32], error) {
	idx, err := r.hduIndex(name)
	if err != nil {
		return nil, err
	}
	h := r.hdus[idx]
	if len(h.naxis) != 2 {
		return nil, pipeerr.Decode(fmt.Sprintf("extension %q is not a 2-D image", name), nil)
	}
	xw, yw := h.naxis[0], h.naxis[1]
	img := grid.New[float32](xw, yw)
	elemBytes := abs(h.bitpix) / 8
	for i := 0; i < xw*yw; i++ {
		off := h.dataOffset + int64(i*elemBytes)
		var raw float64
		switch h.bitpix {
		case 16:
			raw = float64(int16(be16(r.data[off:])))
		case 32:
			raw = float64(int32(be32(r.data[off:])))
		case -32:
			raw = float64(math.Float32frombits(be32(r.data[off:])))
		case -64:
			raw = math.Float64frombits(be64(r.data[off:]))
		}
		img.Arr[i] = float32(raw*h.bscale + h.bzero)
	}
	return img, nil
}
