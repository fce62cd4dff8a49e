package main

import (
	"context"
	"fmt"
	"os"
	"soulhealing/internal/backup"
	"soulhealing/internal/di"
	"soulhealing/internal/structures"

	flag "github.com/spf13/pflag"
)

// runExport writes the backup document to stdout, a file, or the configured
// backup medium.
func runExport(args []string, cli *structures.CliFlags) int {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.StringP("output", "o", "", "Output file (default: stdout)")
	save := fs.Bool("save", false, "Hand the backup to the configured medium with a timestamped name")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: soulhealing export [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  soulhealing export                        JSON to stdout
  soulhealing export -o backup.json         JSON to file
  soulhealing export --save                 soulhealing-backup-<timestamp>.json in backup.dir

`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitError
	}

	service, cleanup, err := di.InitBackupService(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open storage: %v\n", err)
		return ExitConfig
	}
	defer cleanup()

	ctx := context.Background()
	data, err := service.Export(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitBackup
	}

	switch {
	case *save:
		var delivery *backup.Delivery
		if delivery, err = service.Save(ctx, data); err != nil {
			break
		}
		if delivery.Path != "" {
			fmt.Fprintln(os.Stderr, delivery.Path)
			return ExitOK
		}
		// the browser medium hands the document back instead of writing it
		_, err = os.Stdout.Write(delivery.Data)
	case *output != "":
		err = os.WriteFile(*output, data, 0o644)
	default:
		_, err = os.Stdout.Write(data)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitBackup
	}
	return ExitOK
}
