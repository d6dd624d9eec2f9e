package fitsio

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/banshee-data/eroimgtool/internal/grid"
	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

// WriteHeader is the common set of WCS-ish keys spec.md requires on
// every output product: a pixel-space "WCS" recording the image centre
// and pixel scale, not a real sky projection.
type WriteHeader struct {
	Crpix1, Crpix2 float64
	Cdelt1, Cdelt2 float64
	Crval1, Crval2 float64
}

func writeCard(w *strings.Builder, key, val string) {
	fmt.Fprintf(w, "%-8s= %-70s", key, val)
}

func writeFloatCard(w *strings.Builder, key string, val float64) {
	writeCard(w, key, fmt.Sprintf("%g", val))
}

func finishHeader(w *strings.Builder) []byte {
	fmt.Fprintf(w, "%-80s", "END")
	s := w.String()
	if pad := blockSize - len(s)%blockSize; pad != blockSize {
		s += strings.Repeat(" ", pad)
	}
	return []byte(s)
}

func padData(b []byte) []byte {
	if pad := blockSize - len(b)%blockSize; pad != blockSize && len(b) > 0 {
		b = append(b, make([]byte, pad)...)
	}
	return b
}

// WriteImageFloat32 writes a single-HDU FITS file: a primary image HDU
// holding img, scaled for the requested bitpix (8, 16 or -32) via
// BSCALE/BZERO when bitpix is integer, with the pixel-space header keys
// spec.md's output contract names.
func WriteImageFloat32(path string, img *grid.Image[float32], bitpix int, wh WriteHeader) error {
	var bscale, bzero float64 = 1, 0
	var raw []byte

	switch bitpix {
	case -32:
		raw = make([]byte, 4*len(img.Arr))
		for i, v := range img.Arr {
			putBE32(raw[4*i:], math.Float32bits(v))
		}
	case 8, 16:
		maxVal := float32(0)
		for _, v := range img.Arr {
			if v > maxVal {
				maxVal = v
			}
		}
		var scaleMax float64 = 255
		if bitpix == 16 {
			scaleMax = 32767
		}
		if maxVal > 0 {
			bscale = float64(maxVal) / scaleMax
		}
		elemBytes := bitpix / 8
		raw = make([]byte, elemBytes*len(img.Arr))
		for i, v := range img.Arr {
			scaled := int64(0)
			if bscale > 0 {
				scaled = int64(math.Round(float64(v) / bscale))
			}
			if bitpix == 8 {
				raw[i] = byte(scaled)
			} else {
				putBE16(raw[2*i:], uint16(int16(scaled)))
			}
		}
	default:
		return pipeerr.Config(fmt.Sprintf("unsupported output bitpix %d", bitpix), nil)
	}

	var hdr strings.Builder
	writeCard(&hdr, "SIMPLE", "T")
	writeCard(&hdr, "BITPIX", fmt.Sprintf("%d", bitpix))
	writeCard(&hdr, "NAXIS", "2")
	writeCard(&hdr, "NAXIS1", fmt.Sprintf("%d", img.XW))
	writeCard(&hdr, "NAXIS2", fmt.Sprintf("%d", img.YW))
	if bscale != 1 {
		writeFloatCard(&hdr, "BSCALE", bscale)
	}
	if bzero != 0 {
		writeFloatCard(&hdr, "BZERO", bzero)
	}
	writeFloatCard(&hdr, "CRPIX1", wh.Crpix1)
	writeFloatCard(&hdr, "CRPIX2", wh.Crpix2)
	writeFloatCard(&hdr, "CDELT1", wh.Cdelt1)
	writeFloatCard(&hdr, "CDELT2", wh.Cdelt2)
	writeFloatCard(&hdr, "CRVAL1", wh.Crval1)
	writeFloatCard(&hdr, "CRVAL2", wh.Crval2)
	writeCard(&hdr, "CUNIT1", "pix")
	writeCard(&hdr, "CUNIT2", "pix")

	out := append(finishHeader(&hdr), padData(raw)...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return pipeerr.IO("writing FITS image "+path, err)
	}
	return nil
}

// WriteImageInt writes img converted to float32 before delegating to
// WriteImageFloat32 -- RunImage's counts need the same bitpix handling
// as exposure maps when written out.
func WriteImageInt(path string, img *grid.Image[int], bitpix int, wh WriteHeader) error {
	f := grid.New[float32](img.XW, img.YW)
	for i, v := range img.Arr {
		f.Arr[i] = float32(v)
	}
	return WriteImageFloat32(path, f, bitpix, wh)
}

// EventRow is one output row for event mode: source-relative detector
// offsets plus pulse invariant.
type EventRow struct {
	DX, DY, PI float32
}

// WriteEventTable writes a primary (empty) HDU followed by an EROEVT
// binary table with DX, DY, PI float32 columns, one row per event.
func WriteEventTable(path string, rows []EventRow, wh WriteHeader) error {
	var primary strings.Builder
	writeCard(&primary, "SIMPLE", "T")
	writeCard(&primary, "BITPIX", "8")
	writeCard(&primary, "NAXIS", "0")
	primaryBytes := finishHeader(&primary)

	const rowWidth = 12 // 3 x float32
	data := make([]byte, rowWidth*len(rows))
	for i, row := range rows {
		putBE32(data[rowWidth*i:], math.Float32bits(row.DX))
		putBE32(data[rowWidth*i+4:], math.Float32bits(row.DY))
		putBE32(data[rowWidth*i+8:], math.Float32bits(row.PI))
	}

	var ext strings.Builder
	writeCard(&ext, "XTENSION", "BINTABLE")
	writeCard(&ext, "BITPIX", "8")
	writeCard(&ext, "NAXIS", "2")
	writeCard(&ext, "NAXIS1", fmt.Sprintf("%d", rowWidth))
	writeCard(&ext, "NAXIS2", fmt.Sprintf("%d", len(rows)))
	writeCard(&ext, "PCOUNT", "0")
	writeCard(&ext, "GCOUNT", "1")
	writeCard(&ext, "TFIELDS", "3")
	writeCard(&ext, "TTYPE1", "DX")
	writeCard(&ext, "TFORM1", "1E")
	writeCard(&ext, "TTYPE2", "DY")
	writeCard(&ext, "TFORM2", "1E")
	writeCard(&ext, "TTYPE3", "PI")
	writeCard(&ext, "TFORM3", "1E")
	writeCard(&ext, "EXTNAME", "EROEVT")
	writeCard(&ext, "CRPIX1", fmt.Sprintf("%g", wh.Crpix1))
	writeCard(&ext, "CRPIX2", fmt.Sprintf("%g", wh.Crpix2))
	extBytes := finishHeader(&ext)

	out := append(append(primaryBytes, extBytes...), padData(data)...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return pipeerr.IO("writing FITS event table "+path, err)
	}
	return nil
}

func putBE16(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

func putBE32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
