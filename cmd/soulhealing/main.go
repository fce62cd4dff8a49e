package main

import (
	"fmt"
	"os"
	"soulhealing/internal/di"
	"soulhealing/internal/structures"

	flag "github.com/spf13/pflag"
)

const (
	ExitOK = iota
	ExitError
	ExitConfig
	ExitBackup
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: soulhealing [global options] <command> [options]

Commands:
  serve     Run the local API server (default)
  export    Write a backup document
  import    Replace all data with a backup document

Global options:
`)
	flag.PrintDefaults()
}

func main() {
	cli := &structures.CliFlags{}
	flag.StringVarP(&cli.ConfigPath, "config", "c", "config/config.yaml", "Path to the configuration file")
	flag.BoolVarP(&cli.DebugMode, "debug", "d", false, "Enable debug mode")
	flag.CommandLine.SetInterspersed(false)
	flag.Usage = usage
	flag.Parse()

	command := "serve"
	args := flag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		os.Exit(runServe(cli))
	case "export":
		os.Exit(runExport(args, cli))
	case "import":
		os.Exit(runImport(args, cli))
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", command)
		usage()
		os.Exit(ExitError)
	}
}

func runServe(cli *structures.CliFlags) int {
	app, cleanup, err := di.InitApp(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot start: %v\n", err)
		return ExitConfig
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitOK
}
