package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ligustah/stacfetch/pkg/provider"
)

// runTemplate writes a selection template for a provider.
func runTemplate(args []string) int {
	fs := flag.NewFlagSet("template", flag.ExitOnError)

	name := fs.String("provider", "", "Provider: copernicus or element84 (required)")
	output := fs.String("output", "selection.toml", "Selection file to write")
	force := fs.Bool("force", false, "Overwrite an existing file")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: stacfetch template [options]

Write a selection template listing every product of a provider. Edit
ids_to_download and the download flags, then run 'stacfetch plan'.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *name == "" {
		fmt.Fprintln(os.Stderr, "Error: -provider is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	kind, err := provider.Lookup(*name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	if !*force {
		if _, err := os.Stat(*output); err == nil {
			fmt.Fprintf(os.Stderr, "Error: %s already exists\n", *output)
			fmt.Fprintln(os.Stderr, "Use -force to overwrite")
			return ExitPersistence
		}
	}

	sel, err := provider.Template(kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	if err := sel.Write(*output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitPersistence
	}

	fmt.Fprintf(os.Stderr, "[stacfetch] Selection template written: %s (%s)\n", *output, kind)
	return ExitSuccess
}
