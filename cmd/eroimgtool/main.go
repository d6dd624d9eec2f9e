// Command eroimgtool builds source-relative image, exposure, and event
// products from an eROSITA-class event file, following the three mode
// drivers internal/modes implements.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

const version = "0.1.0"

// logger is the ambient *log.Logger threaded into every mode driver,
// following the same field-injected logger convention as the teacher's
// BackgroundFlusher.
var logger = log.New(os.Stderr, "eroimgtool: ", log.LstdFlags)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "image":
		err = runImageCmd(args)
	case "expos":
		err = runExposCmd(args)
	case "event":
		err = runEventCmd(args)
	case "version":
		fmt.Printf("eroimgtool version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`eroimgtool - source-relative image/exposure/event product builder

Usage: eroimgtool <command> [options]

Commands:
  image    Build a source-relative count image
  expos    Build a source-relative exposure map
  event    Build a source-relative event list
  version  Show eroimgtool version
  help     Show this help message

Common flags (all subcommands):
  --tm <1..7>             Telescope module number
  --sources <ra,dec,...>  One or more RA,Dec source positions (degrees)
  --proj <name>           Projection mode: fov|fov_sky|full|det|radial|radial_sym|box
  --proj-args <floats>    Comma-separated projection-mode arguments
  --pixsize <f>           Output pixel size
  --mask <file>           Sky mask image; rejected by this build (no WCS support), use --mask-pts
  --mask-pts <ra,dec,rad,...>  Circular point masks (radius in CCD pixels)
  --detmap                Use the CALDB DETMAP calibration weight as the static mask
  --shadowmask            Zero the bottom readout rows of the detector mask
  --gti <file>            External GTI file (defaults to the event file's own GTI)
  --xw <n> --yw <n>       Output image dimensions
  --pi-min <f> --pi-max <f>  PI filter range
  --delta-t <f>           Exposure-map GTI subdivision width (seconds)
  --samples <n>           Cap the number of exposure-map time samples
  --threads <n>           Worker thread count
  --bitpix <-32|8|16>     Output image bitpix (image/expos only)
  --debug-plot <file>     Write a PNG visualization of the result alongside --out
  --out <file>            Output file path

Environment:
  CALDB   Root of the calibration database tree`)
}

func fatalf(format string, args ...any) error {
	return pipeerr.Config(fmt.Sprintf(format, args...), nil)
}
