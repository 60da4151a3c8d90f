package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

type snapshotCmd struct {
	date  string
	store bool
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "portfolio valuation for a date" }
func (*snapshotCmd) Usage() string {
	return `assetctl snapshot [-d YYYY-MM-DD] [-store]

  Values every holding on the date (today by default). With -store the
  snapshot is saved unless one already exists for the date.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "valuation date, defaults to today")
	f.BoolVar(&c.store, "store", false, "store the snapshot")
}

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, cfg, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	date := a.ValuationService.Today()
	if c.date != "" {
		date, err = time.ParseInLocation("2006-01-02", c.date, cfg.Location)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid date %q: %v\n", c.date, err)
			return subcommands.ExitUsageError
		}
	}

	var snapshot *domain.Snapshot
	if c.store {
		snapshot, err = a.ValuationService.RecordDailySnapshot(ctx, date)
	} else {
		snapshot, err = a.ValuationService.CalculateSnapshot(ctx, date)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if snapshot == nil {
		fmt.Printf("A snapshot for %s already exists.\n", date.Format("2006-01-02"))
		return subcommands.ExitSuccess
	}

	printMarkdown(snapshotMarkdown(snapshot, cfg.BaseCurrency))
	return subcommands.ExitSuccess
}

func snapshotMarkdown(s *domain.Snapshot, currency string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Valuation %s\n\n", s.Date.Format("2006-01-02"))
	fmt.Fprintf(&sb, "- Total: **%s %s**\n", s.TotalBase.StringFixed(0), currency)
	fmt.Fprintf(&sb, "- Total USD: %s\n", s.TotalUSD.StringFixed(2))
	fmt.Fprintf(&sb, "- Total BTC: %s\n", s.TotalBTC.StringFixed(8))

	writeBreakdown(&sb, "By asset class", s.ByAssetClass)
	writeBreakdown(&sb, "By account type", s.ByAccountType)
	writeBreakdown(&sb, "By currency (native)", s.ByCurrency)
	return sb.String()
}

func writeBreakdown(sb *strings.Builder, title string, b domain.Breakdown) {
	if len(b) == 0 {
		return
	}
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(sb, "\n## %s\n\n| | Value |\n|---|---:|\n", title)
	for _, k := range keys {
		fmt.Fprintf(sb, "| %s | %s |\n", k, b[k].StringFixed(0))
	}
}
