// Command onerom-validate round-trips a composed image against the config
// document and firmware it was built from, reporting any byte that fails
// to recover through the parser's demangle path.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/onerom/onerom/errs"
	"github.com/onerom/onerom/internal/hardware"
	"github.com/onerom/onerom/internal/image"
	"github.com/onerom/onerom/internal/romconfig"
	"github.com/onerom/onerom/internal/validate"
	"github.com/onerom/onerom/log"
)

func main() {
	configPath := flag.String("json", "", "path to the ROM-set config JSON document used to build the image")
	imagePath := flag.String("fw-image", "", "path to the composed image")
	revision := flag.String("revision", "fire-24-d", "PCB revision the image was mangled for")
	verbose := flag.Bool("v", false, "log per-ROM validation progress")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: onerom-validate --json romset.json --fw-image image.bin [options]\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *configPath == "" || *imagePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	clean, err := run(*configPath, *imagePath, *revision, *verbose)
	if err != nil {
		errs.Fprint(os.Stderr, err)
		os.Exit(1)
	}
	if !clean {
		os.Exit(1)
	}
}

func run(configPath, imagePath, revision string, verbose bool) (bool, error) {
	logger := log.Logger(log.Nop{})
	if verbose {
		logger = log.NewSlog()
	}

	rawConfig, err := os.ReadFile(configPath)
	if err != nil {
		return false, &errs.FetchFailedError{URL: configPath, Reason: err.Error()}
	}
	imgData, err := os.ReadFile(imagePath)
	if err != nil {
		return false, &errs.FetchFailedError{URL: imagePath, Reason: err.Error()}
	}

	pm, err := hardware.Lookup(revision)
	if err != nil {
		return false, err
	}

	doc, err := romconfig.Load(context.Background(), rawConfig, romconfig.NewHTTPFetcher())
	if err != nil {
		return false, err
	}

	img, err := image.Parse(imgData)
	if err != nil {
		return false, err
	}

	reports, err := validate.Validate(pm, img, doc.RomSets, logger)
	if err != nil {
		return false, err
	}

	clean := true
	for _, rep := range reports {
		if !rep.OK() {
			clean = false
		}
		for _, rr := range rep.Roms {
			status := "OK"
			if !rr.OK() {
				status = "MISMATCH"
				clean = false
			}
			fmt.Printf("rom set %d rom %d (%s): %d bytes checked, %d mismatch(es) [%s]\n",
				rep.RomSetIndex, rr.RomIndex, rr.ChipType.String(), rr.BytesChecked, rr.MismatchCount, status)
			for _, m := range rr.Mismatches {
				fmt.Printf("  addr 0x%X: expected 0x%02X, got 0x%02X\n", m.Addr, m.Expected, m.Got)
			}
		}
	}

	total := validate.TotalMismatches(reports)
	if total == 0 {
		fmt.Println("all ROMs round-tripped cleanly")
	} else {
		fmt.Printf("%d mismatch(es) total\n", total)
	}
	return clean, nil
}
