// Command onerom-info parses a composed image and prints a human-readable
// dump of its metadata header, without requiring a caller to write a Go
// program against the parser package.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/onerom/onerom/errs"
	"github.com/onerom/onerom/internal/image"
)

func main() {
	imagePath := flag.String("fw-image", "", "path to a composed image")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: onerom-info --fw-image image.bin\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *imagePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*imagePath); err != nil {
		errs.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func run(imagePath string) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return &errs.FetchFailedError{URL: imagePath, Reason: err.Error()}
	}

	img, err := image.Parse(data)
	if err != nil {
		return err
	}

	plain := !term.IsTerminal(int(os.Stdout.Fd()))

	fmt.Printf("metadata header at offset 0x%X, version %d\n", img.HeaderOffset, img.Version)
	fmt.Printf("%d ROM set(s)\n", len(img.RomSets))
	for i, rs := range img.RomSets {
		fmt.Printf("\nROM set %d: serve mode=%s table=0x%X..0x%X (%d bytes)\n",
			i, rs.ServeMode.String(), rs.TableOffset, rs.TableOffset+rs.TableSize, rs.TableSize)
		for j, rd := range rs.Roms {
			line := fmt.Sprintf("  ROM %d: chip=%s cs=[%s, %s, %s]", j, rd.ChipType.String(),
				rd.CS[0].String(), rd.CS[1].String(), rd.CS[2].String())
			if rd.Filename != "" {
				line += fmt.Sprintf(" filename=%q", rd.Filename)
			}
			fmt.Println(line)
		}
		if rs.Overrides != nil {
			fmt.Printf("  firmware overrides: present=0x%02X value=0x%02X\n", rs.Overrides.Present, rs.Overrides.Value)
		}
		if rs.ServeAlgParams != nil {
			fmt.Printf("  serve_alg_params: % X\n", rs.ServeAlgParams)
		}
		if !plain {
			fmt.Println("  (table contents omitted; pipe to a file and inspect with a hex viewer)")
		}
	}
	return nil
}
