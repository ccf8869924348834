package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/meltforce/fitlog/internal/importer"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "FitLog server URL (e.g. https://fitlog.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("FITLOG_AUTH_API_KEY"), "import API key (defaults to FITLOG_AUTH_API_KEY)")
	user := flag.String("user", "", "login to attribute imported data to (defaults to the server's dev user)")
	exportPath := flag.String("path", "", "path to directory of export .json files (required)")
	dryRun := flag.Bool("dry-run", false, "parse files but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fitlog-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: fitlog-import -server <URL> -path <export dir> [-user login] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export path does not exist or is not a directory", "path", *exportPath)
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	stateDir := filepath.Join(homeDir, ".fitlog-import")

	state, err := importer.OpenStateDB(stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode — files will be parsed but not sent")
	}

	client := importer.NewClient(*serverURL, *apiKey, *user)
	imp := importer.New(client, state, *exportPath, *dryRun, log)
	stats, err := imp.Run()
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("import complete")
}

func printStats(stats *importer.Stats) {
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("  Files total:    %d\n", stats.FilesTotal)
	fmt.Printf("  Files sent:     %d\n", stats.FilesSent)
	fmt.Printf("  Files skipped:  %d (already imported)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:  %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Foods inserted:           %d (%d duplicates)\n", stats.Result.FoodsInserted, stats.Result.FoodsDuplicated)
	fmt.Printf("  Meals inserted:           %d (%d duplicates)\n", stats.Result.MealsInserted, stats.Result.MealsDuplicated)
	fmt.Printf("  Water entries inserted:   %d (%d duplicates)\n", stats.Result.WaterInserted, stats.Result.WaterDuplicated)
	fmt.Printf("  Training events inserted: %d (%d duplicates)\n", stats.Result.TrainingEventsInserted, stats.Result.TrainingEventsDuped)
}
