package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/trezcool/matibabu/core/report"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db        *sql.DB
	reportSvc *report.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run database migrations (up, up-by-one, up-to N, down, down-to N, redo, reset, status, version, create NAME [go|sql], fix)")
	fmt.Println("  render -id ID [-out PATH] [-size A4|oficio] [-title TITLE] - render a report to a local PDF file")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "render":
		return cli.render(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
