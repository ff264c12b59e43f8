// Command onerom-compose reads a declarative ROM-set config document and a
// firmware binary and writes a single flashable image with every ROM's
// bytes pre-mangled into GPIO-port order.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/onerom/onerom/errs"
	"github.com/onerom/onerom/internal/hardware"
	"github.com/onerom/onerom/internal/image"
	"github.com/onerom/onerom/internal/romconfig"
	"github.com/onerom/onerom/internal/romset"
	"github.com/onerom/onerom/log"
)

func main() {
	configPath := flag.String("json", "", "path to the ROM-set config JSON document")
	firmwarePath := flag.String("fw-image", "", "path to the base firmware binary")
	revision := flag.String("revision", "fire-24-d", "PCB revision to mangle for")
	outPath := flag.String("out", "", "path to write the composed image")
	bootLogging := flag.Bool("boot-logging", false, "embed each ROM's source filename for runtime boot logging")
	verbose := flag.Bool("v", false, "log composition progress")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: onerom-compose --json romset.json --fw-image fw.bin --out image.bin [options]\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *configPath == "" || *firmwarePath == "" || *outPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*configPath, *firmwarePath, *outPath, *revision, *bootLogging, *verbose); err != nil {
		errs.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, firmwarePath, outPath, revision string, bootLogging, verbose bool) error {
	logger := log.Logger(log.Nop{})
	if verbose {
		logger = log.NewSlog()
	}

	rawConfig, err := os.ReadFile(configPath)
	if err != nil {
		return &errs.FetchFailedError{URL: configPath, Reason: err.Error()}
	}
	fw, err := os.ReadFile(firmwarePath)
	if err != nil {
		return &errs.FetchFailedError{URL: firmwarePath, Reason: err.Error()}
	}

	pm, err := hardware.Lookup(revision)
	if err != nil {
		return err
	}

	doc, err := romconfig.Load(context.Background(), rawConfig, romconfig.NewHTTPFetcher())
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	built := make([]romset.Built, len(doc.RomSets))
	for i, rs := range doc.RomSets {
		b, err := romset.Build(pm, rs)
		if err != nil {
			return fmt.Errorf("building ROM set %d: %w", i, err)
		}
		built[i] = *b
		if interactive {
			fmt.Printf("rom set %d: %d ROM(s), %d-byte table\n", i, len(b.Roms), len(b.Table))
		}
	}

	data, err := image.Compose(fw, built, image.WithLogger(logger), image.WithBootLoggingFilenames(bootLogging))
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dirOf(outPath), ".onerom-compose-*")
	if err != nil {
		return &errs.FetchFailedError{URL: outPath, Reason: "creating temp file: " + err.Error()}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &errs.FetchFailedError{URL: outPath, Reason: "writing image: " + err.Error()}
	}
	if err := tmp.Close(); err != nil {
		return &errs.FetchFailedError{URL: outPath, Reason: "closing temp file: " + err.Error()}
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return &errs.FetchFailedError{URL: outPath, Reason: "renaming into place: " + err.Error()}
	}

	if interactive {
		fmt.Printf("wrote %s (%d bytes)\n", outPath, len(data))
	}
	return nil
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
