package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/sheets/v4"

	"github.com/grubmail/grubmail/internal/export"
	"github.com/grubmail/grubmail/internal/mailbox"
	"github.com/grubmail/grubmail/internal/scrape"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

const defaultQuery = `from:no-reply@doordash.com subject:"Order Confirmation for"`

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("grubmail")
	var (
		query       = fs.StringLong("query", defaultQuery, "Gmail search query for order confirmations")
		dbPath      = fs.StringLong("db", "grubmail.db", "Message cache database file path")
		outDir      = fs.StringLong("out", "./data", "Directory for exported CSV files")
		credsPath   = fs.StringLong("credentials", "creds/credentials.json", "OAuth client credentials file")
		tokenPath   = fs.StringLong("token", "creds/token.json", "Cached OAuth token file")
		workers     = fs.IntLong("workers", 4, "Number of concurrent extraction workers")
		spreadsheet = fs.StringLong("spreadsheet", "", "Google Sheets spreadsheet ID to export to (optional)")
		noCache     = fs.BoolLong("no-cache", "Fetch every message fresh instead of using the cache")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("GRUBMAIL"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize message cache
	slog.Info("Initializing message cache...", "path", *dbPath)
	cache, err := mailbox.NewBoltCache(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cache.Close()

	// Authenticate against Google. The Sheets scope is only requested
	// when a spreadsheet export is actually going to run.
	scopes := []string{gmail.GmailReadonlyScope}
	if *spreadsheet != "" {
		scopes = append(scopes, sheets.SpreadsheetsScope)
	}
	opts, err := mailbox.OAuthClientOptions(ctx, *credsPath, *tokenPath, scopes...)
	if err != nil {
		slog.Error("Authentication failed", "error", err)
		os.Exit(1)
	}

	mbox, err := mailbox.NewGmail(ctx, opts...)
	if err != nil {
		slog.Error("Failed to initialize mailbox", "error", err)
		os.Exit(1)
	}

	// Fetch messages, serving repeats from the cache
	slog.Info("Fetching messages...", "query", *query)
	fetchCache := mailbox.Cache(cache)
	if *noCache {
		fetchCache = mailbox.NopCache{}
	}
	msgs, err := mailbox.FetchAll(ctx, mbox, fetchCache, *query)
	if err != nil {
		slog.Error("Failed to fetch messages", "error", err)
		os.Exit(1)
	}

	// Extract and validate orders
	slog.Info("Extracting orders...", "messages", len(msgs), "workers", *workers)
	runner := scrape.NewRunner(scrape.NewDoorDash(), *workers)
	report := runner.Run(ctx, msgs)

	// Persist diagnostic buckets for grammar maintenance
	if err := cache.SaveInvalid(report.Invalid); err != nil {
		slog.Warn("Failed to record invalid messages", "error", err)
	}
	if err := cache.SaveFailures(report.Failed); err != nil {
		slog.Warn("Failed to record extraction failures", "error", err)
	}

	// Export accepted orders
	slog.Info("Exporting orders...", "orders", len(report.Orders), "dir", *outDir)
	csvExporter, err := export.NewCSV(*outDir)
	if err != nil {
		slog.Error("Failed to initialize CSV export", "error", err)
		os.Exit(1)
	}
	if err := csvExporter.Export(ctx, report.Orders); err != nil {
		slog.Error("CSV export failed", "error", err)
		os.Exit(1)
	}

	if *spreadsheet != "" {
		sheetsExporter, err := export.NewSheets(ctx, *spreadsheet, opts...)
		if err != nil {
			slog.Error("Failed to initialize Sheets export", "error", err)
			os.Exit(1)
		}
		if err := sheetsExporter.Export(ctx, report.Orders); err != nil {
			slog.Error("Sheets export failed", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Done")
}
