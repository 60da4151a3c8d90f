package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&gainCmd{}, "gains")
	commander.Register(&reportCmd{}, "gains")
	commander.Register(&snapshotCmd{}, "valuation")
	commander.Register(&refreshCmd{}, "valuation")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
