package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/simaogato/assetledger-backend/internal/domain"
	"github.com/simaogato/assetledger-backend/internal/usecase/gains"
)

type gainCmd struct {
	method string
}

func (*gainCmd) Name() string     { return "gain" }
func (*gainCmd) Synopsis() string { return "realized gain of a single sell trade" }
func (*gainCmd) Usage() string {
	return `assetctl gain [-method FIFO|HIFO] <trade-id>

  Matches the sell against the buys before it and prints the lots used.
`
}

func (c *gainCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.method, "method", "FIFO", "cost basis method: FIFO or HIFO")
}

func (c *gainCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "gain requires exactly one trade id")
		return subcommands.ExitUsageError
	}
	id, err := uuid.Parse(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid trade id %q: %v\n", f.Arg(0), err)
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

	result, err := a.GainService.CalculateRealizedGainByID(ctx, id, method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(gainMarkdown(result, cfg.BaseCurrency))
	return subcommands.ExitSuccess
}

func gainMarkdown(r *gains.GainResult, currency string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Sell %s\n\n", r.SellTradeID)
	fmt.Fprintf(&sb, "- Date: %s\n", r.SellDate.Format("2006-01-02"))
	fmt.Fprintf(&sb, "- Amount: %s BTC\n", r.SellAmount.StringFixed(8))
	fmt.Fprintf(&sb, "- Method: %s\n", r.Method)
	fmt.Fprintf(&sb, "- Gross proceeds: %s %s\n", r.GrossProceeds.StringFixed(0), currency)
	fmt.Fprintf(&sb, "- Cost basis: %s %s\n", r.CostBasis.StringFixed(0), currency)
	fmt.Fprintf(&sb, "- Realized gain: **%s %s**\n", r.RealizedGain.StringFixed(0), currency)

	if len(r.MatchedLots) == 0 {
		return sb.String()
	}

	sb.WriteString("\n## Matched lots\n\n")
	sb.WriteString("| Buy date | Amount (BTC) | Rate | Cost |\n")
	sb.WriteString("|---|---:|---:|---:|\n")
	for _, lot := range r.MatchedLots {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			lot.BuyDate.Format("2006-01-02"),
			lot.Amount.StringFixed(8),
			lot.Rate.StringFixed(0),
			lot.Amount.Mul(lot.CostPerUnit).StringFixed(0),
		)
	}
	return sb.String()
}
