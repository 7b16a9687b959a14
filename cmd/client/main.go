package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/draftkeeper/internal/client/api"
	"github.com/iudanet/draftkeeper/internal/client/cli"
	"github.com/iudanet/draftkeeper/internal/client/iocli"
	"github.com/iudanet/draftkeeper/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "draftkeeper-client.db", "Path to local database")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	// В интерактивном сеансе редактирования логи не должны мешать вводу
	logLevel := slog.LevelWarn
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	stdio := iocli.NewStdio()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Missing command")
		cli.New(stdio, nil, nil, logger).PrintUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	apiClient := api.NewClient(*serverURL)

	c := cli.New(stdio, apiClient, boltStorage, logger)
	if err := c.Run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("DraftKeeper Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
