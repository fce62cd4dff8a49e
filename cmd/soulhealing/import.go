package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"soulhealing/internal/di"
	"soulhealing/internal/structures"

	flag "github.com/spf13/pflag"
)

func runImport(args []string, cli *structures.CliFlags) int {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: soulhealing import <file|->

Replaces every calendar entry, note and person with the contents of the
backup document. Use - to read from stdin.

`)
	}
	if err := fs.Parse(args); err != nil {
		return ExitError
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return ExitError
	}

	var (
		data []byte
		err  error
	)
	if path := fs.Arg(0); path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitBackup
	}

	service, cleanup, err := di.InitBackupService(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open storage: %v\n", err)
		return ExitConfig
	}
	defer cleanup()

	if err := service.Import(context.Background(), data); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitBackup
	}
	fmt.Fprintln(os.Stderr, "Import complete")
	return ExitOK
}
