package main

import (
	"path/filepath"
	"testing"

	"github.com/banshee-data/eroimgtool/internal/fitsio"
	"github.com/banshee-data/eroimgtool/internal/grid"
)

func TestVersionConstantIsSet(t *testing.T) {
	if version == "" {
		t.Error("version constant should not be empty")
	}
}

func TestPrintUsageDoesNotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("printUsage() panicked: %v", r)
		}
	}()
	printUsage()
}

func TestNewFlagSetDefaults(t *testing.T) {
	r, outFile, _ := newFlagSet("image")
	if err := r.fs.Parse(nil); err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}

	if r.tm != 1 {
		t.Errorf("tm default = %d, want 1", r.tm)
	}
	if r.projName != "full" {
		t.Errorf("proj default = %q, want full", r.projName)
	}
	if r.xw != 400 || r.yw != 400 {
		t.Errorf("xw/yw default = %d/%d, want 400/400", r.xw, r.yw)
	}
	if r.threads != 1 {
		t.Errorf("threads default = %d, want 1", r.threads)
	}
	if r.bitpix != -32 {
		t.Errorf("bitpix default = %d, want -32", r.bitpix)
	}
	if *outFile != "" {
		t.Errorf("out default = %q, want empty", *outFile)
	}
}

func TestBuildConfigRequiresSources(t *testing.T) {
	r, _, _ := newFlagSet("image")
	if err := r.fs.Parse(nil); err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}

	if _, err := r.buildConfig("events.fits", "out.fits"); err == nil {
		t.Error("buildConfig with no --sources should fail Validate")
	}
}

func TestBuildConfigParsesSourcesAndMaskPts(t *testing.T) {
	r, _, _ := newFlagSet("image")
	args := []string{"--sources", "10,20,30,40", "--mask-pts", "1,2,3"}
	if err := r.fs.Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := r.buildConfig("events.fits", "out.fits")
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("len(Sources) = %d, want 2", len(cfg.Sources))
	}
	if cfg.Sources[1].RA != 30 || cfg.Sources[1].Dec != 40 {
		t.Errorf("Sources[1] = %+v, want (30,40)", cfg.Sources[1])
	}
	if len(cfg.MaskPts) != 1 || cfg.MaskPts[0].RadiusPix != 3 {
		t.Errorf("MaskPts = %+v, want one point with radius 3", cfg.MaskPts)
	}
}

func TestLoadSkyMaskAcceptsNoMaskFile(t *testing.T) {
	if _, err := loadSkyMask("", nil); err != nil {
		t.Errorf("loadSkyMask with no file should succeed, got %v", err)
	}
}

func TestLoadSkyMaskRejectsMaskFileWithoutWCS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.fits")
	img := grid.New[int](4, 4)
	if err := fitsio.WriteImageInt(path, img, 8, fitsio.WriteHeader{}); err != nil {
		t.Fatalf("WriteImageInt: %v", err)
	}

	_, err := loadSkyMask(path, nil)
	if err == nil {
		t.Fatal("loadSkyMask with a --mask file should be rejected")
	}
}
