package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
	"github.com/simaogato/assetledger-backend/internal/adapter/report"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

type reportCmd struct {
	method string
	csv    bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "annual realized gain report" }
func (*reportCmd) Usage() string {
	return `assetctl report [-method FIFO|HIFO] [-csv] <year>

  Prints every sell of the calendar year with its gain and a total row.
  With -csv the report is written to stdout as CSV.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.method, "method", "FIFO", "cost basis method: FIFO or HIFO")
	f.BoolVar(&c.csv, "csv", false, "write CSV instead of a rendered table")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "report requires exactly one year")
		return subcommands.ExitUsageError
	}
	year, err := strconv.Atoi(f.Arg(0))
	if err != nil || year <= 0 {
		fmt.Fprintf(os.Stderr, "invalid year %q\n", f.Arg(0))
		return subcommands.ExitUsageError
	}
	method, err := domain.ParseCostBasisMethod(c.method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	a, cfg, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	gainReport, err := a.GainService.GenerateGainReport(ctx, year, method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.csv {
		if err := report.NewCSVSink(os.Stdout, cfg.BaseCurrency).Write(gainReport); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	var buf bytes.Buffer
	if err := report.NewMarkdownSink(&buf, cfg.BaseCurrency).Write(gainReport); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(buf.String())
	return subcommands.ExitSuccess
}
