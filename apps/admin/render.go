package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/trezcool/matibabu/core/report"
)

var writeFileFunc = os.WriteFile // mockable

func (cli *commandLine) render(args []string) error {
	renderCmd := flag.NewFlagSet("render", flag.ExitOnError)
	id := renderCmd.Int("id", 0, "The report's id.")
	out := renderCmd.String("out", "", "Output file path; defaults to the report's delivery filename.")
	size := renderCmd.String("size", string(report.PaperA4), "Paper size: A4 or oficio.")
	title := renderCmd.String("title", "", "Optional title override.")

	if err := renderCmd.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		renderCmd.Usage()
		return errHelp
	}

	opts := report.RenderOptions{
		Size:  report.PaperSize(*size),
		Title: *title,
	}
	pdf, rep, err := cli.reportSvc.RenderPDF(context.Background(), *id, opts)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = report.Filename(rep)
	}
	if err = writeFileFunc(path, pdf, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", path, len(pdf))
	return nil
}
