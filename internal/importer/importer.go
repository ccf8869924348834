// Package importer pushes FitLog export files into a running server. It
// walks a directory of JSON exports, skips files already sent (tracked in
// a local SQLite state database), and POSTs the rest to the bulk import
// endpoint.
package importer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/meltforce/fitlog/internal/models"
)

// Stats tracks import progress.
type Stats struct {
	FilesTotal   int
	FilesSent    int
	FilesSkipped int
	FilesErrored int

	Result models.ImportResult
}

// Importer reads export files from a directory and sends them to the server.
type Importer struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Importer. With dryRun set, files are parsed and counted
// but nothing is sent or recorded.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Importer {
	return &Importer{client: client, state: state, dir: dir, dryRun: dryRun, log: log}
}

// Run processes all .json export files under the directory, oldest name
// first so foods defined in earlier exports exist before meals reference
// them.
func (imp *Importer) Run() (*Stats, error) {
	files, err := filepath.Glob(filepath.Join(imp.dir, "*.json"))
	if err != nil {
		return &imp.stats, fmt.Errorf("listing export files: %w", err)
	}
	sort.Strings(files)
	imp.stats.FilesTotal = len(files)

	for _, f := range files {
		if err := imp.processFile(f); err != nil {
			imp.log.Warn("import failed", "file", filepath.Base(f), "error", err)
			imp.stats.FilesErrored++
		}
	}

	return &imp.stats, nil
}

func (imp *Importer) processFile(path string) error {
	key, err := KeyFile(path)
	if err != nil {
		return fmt.Errorf("keying file: %w", err)
	}

	done, err := imp.state.Seen(key)
	if err != nil {
		return fmt.Errorf("checking state: %w", err)
	}
	if done {
		imp.stats.FilesSkipped++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}

	var payload models.ExportPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	if imp.dryRun {
		imp.log.Info("would import", "file", key.Path,
			"foods", len(payload.Foods), "meals", len(payload.Meals),
			"water", len(payload.WaterEntries), "training_events", len(payload.TrainingEvents))
		imp.stats.FilesSent++
		return nil
	}

	result, err := imp.client.SendPayload(payload)
	if err != nil {
		return err
	}
	imp.stats.Result.Add(*result)
	imp.stats.FilesSent++

	if err := imp.state.Record(key); err != nil {
		return fmt.Errorf("recording state: %w", err)
	}

	imp.log.Info("imported", "file", key.Path,
		"foods", result.FoodsInserted, "meals", result.MealsInserted,
		"water", result.WaterInserted, "training_events", result.TrainingEventsInserted)
	return nil
}
