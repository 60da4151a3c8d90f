package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/simaogato/assetledger-backend/internal/app"
	"github.com/simaogato/assetledger-backend/internal/config"
	"github.com/simaogato/assetledger-backend/pkg/logger"
)

var (
	envFile  = flag.String("env", "", "Path to a .env file (defaults to ./.env when present)")
	logLevel = flag.String("log-level", "warn", "Log level written to stderr")
)

// openApp loads the configuration and wires the services against the configured database
func openApp(ctx context.Context) (*app.App, *config.Config, error) {
	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}

	cfg, err := config.Load(files...)
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(logger.Config{Level: *logLevel, Pretty: true, Output: os.Stderr})

	a, err := app.New(ctx, cfg, log, nil)
	if err != nil {
		return nil, nil, err
	}
	return a, cfg, nil
}

// printMarkdown renders md for the terminal, falling back to the raw text
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
