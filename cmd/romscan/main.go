// Package main provides the romscan CLI: it verifies a ROM archive
// collection against a DAT catalog and prints an XML report of missing,
// size-mismatched, and relocated files to stdout.
//
// Usage:
//
//	romscan [OPTIONS] <rompath>
//
// The rompath directory is scanned for .zip/.7z archives. Extra search-only
// directories may be supplied with -a; the DAT is read from -d or stdin.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"romscan/internal/dat"
	"romscan/internal/logger"
	"romscan/internal/report"
	"romscan/internal/resolve"
	"romscan/internal/scan"
)

type options struct {
	AddPaths []string `short:"a" long:"addpath" description:"extra archive directory to search, not verified against (repeatable)"`
	DatPath  string   `short:"d" long:"datpath" description:"path to the DAT file to read (default: stdin)"`
	Unmerged bool     `short:"u" long:"unmerged" description:"verify as an unmerged set"`
	Verbose  bool     `short:"v" long:"verbose" description:"verbose diagnostics on stderr"`
}

// parseArgs parses the command line and returns the options plus the
// positional rompath.
func parseArgs(args []string) (*options, string, error) {
	opt := &options{}
	parser := flags.NewParser(opt, flags.Default)
	parser.Usage = "[OPTIONS] <rompath>"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, "", err
	}
	if len(rest) != 1 {
		parser.WriteHelp(os.Stderr)
		return nil, "", fmt.Errorf("exactly one rompath argument is required")
	}
	return opt, rest[0], nil
}

func main() {
	opt, romDir, err := parseArgs(os.Args[1:])
	if err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	logger.Setup(opt.Verbose)

	// Path validation happens before any parsing or scanning: a bad
	// directory is a usage error, not a run result.
	romPaths, err := scan.ListArchives(romDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "romscan:", err)
		os.Exit(2)
	}
	var addPaths []string
	for _, dir := range opt.AddPaths {
		paths, err := scan.ListArchives(dir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "romscan:", err)
			os.Exit(2)
		}
		addPaths = append(addPaths, paths...)
	}

	var datIn io.Reader = os.Stdin
	if opt.DatPath != "" {
		f, err := os.Open(opt.DatPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "romscan:", err)
			os.Exit(1)
		}
		defer f.Close()
		datIn = f
	}
	cat, err := dat.Parse(datIn)
	if err != nil {
		fmt.Fprintln(os.Stderr, "romscan:", err)
		os.Exit(1)
	}
	logger.Debugf("parsing DAT complete: %d games", len(cat))

	contents, files := scan.Build(romPaths, addPaths)
	logger.Debugf("reading archives complete: %d archives indexed, %d distinct contents", len(files), len(contents))

	outcomes := resolve.Resolve(cat, files, contents, opt.Unmerged)
	if err := report.Build(outcomes).WriteTo(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "romscan:", err)
		os.Exit(1)
	}
}
