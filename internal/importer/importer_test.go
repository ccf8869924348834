package importer

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/meltforce/fitlog/internal/models"
)

func writeExportFile(t *testing.T, dir, name string, payload models.ExportPayload) string {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestStateDBRoundTrip verifies files are only considered imported with a
// matching path, size, and hash.
func TestStateDBRoundTrip(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("opening state db: %v", err)
	}
	defer state.Close()

	key := FileKey{Path: "export-1.json", Size: 100, Hash: "abc"}

	done, err := state.Seen(key)
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Error("fresh file reported as imported")
	}

	if err := state.Record(key); err != nil {
		t.Fatal(err)
	}

	done, err = state.Seen(key)
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Error("recorded file not reported as imported")
	}

	// A changed file (different hash) must be re-sent.
	changed := key
	changed.Hash = "def"
	done, err = state.Seen(changed)
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Error("changed file reported as imported")
	}
}

// TestKeyFile verifies keys are content-based and stable.
func TestKeyFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	if err := os.WriteFile(a, []byte(`{"foods":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte(`{"foods":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	keyA, err := KeyFile(a)
	if err != nil {
		t.Fatal(err)
	}
	if keyA.Path != "a.json" {
		t.Errorf("key path = %q, want base name %q", keyA.Path, "a.json")
	}
	if keyA.Size != int64(len(`{"foods":[]}`)) {
		t.Errorf("key size = %d, want %d", keyA.Size, len(`{"foods":[]}`))
	}

	keyB, err := KeyFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if keyA.Hash != keyB.Hash {
		t.Error("identical content produced different hashes")
	}

	if err := os.WriteFile(b, []byte(`{"meals":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	keyB, err = KeyFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if keyA.Hash == keyB.Hash {
		t.Error("different content produced the same hash")
	}
}

// TestRunSendsAndSkips verifies a full import run: new files are POSTed
// with the API key, recorded in state, and skipped on the next run.
func TestRunSendsAndSkips(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/import" {
			t.Errorf("path = %q, want /api/v1/import", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "secret" {
			t.Errorf("api key = %q, want secret", got)
		}
		if got := r.URL.Query().Get("user"); got != "alice" {
			t.Errorf("user = %q, want alice", got)
		}
		requests++

		var payload models.ExportPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.ImportResult{
			FoodsInserted: len(payload.Foods),
			WaterInserted: len(payload.WaterEntries),
		})
	}))
	defer srv.Close()

	exportDir := t.TempDir()
	writeExportFile(t, exportDir, "export-1.json", models.ExportPayload{
		Foods: []models.ExportFood{{ID: uuid.New(), Name: "Oats", Calories: 389}},
	})
	writeExportFile(t, exportDir, "export-2.json", models.ExportPayload{
		WaterEntries: []models.ExportWaterEntry{{ID: uuid.New(), AmountML: 500}},
	})

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	client := NewClient(srv.URL, "secret", "alice")
	imp := New(client, state, exportDir, false, slog.Default())

	stats, err := imp.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.FilesSent != 2 || stats.FilesSkipped != 0 || stats.FilesErrored != 0 {
		t.Errorf("stats = %+v, want 2 sent", stats)
	}
	if stats.Result.FoodsInserted != 1 || stats.Result.WaterInserted != 1 {
		t.Errorf("result = %+v, want 1 food and 1 water entry", stats.Result)
	}
	if requests != 2 {
		t.Errorf("requests = %d, want 2", requests)
	}

	// Second run: everything already in state, nothing sent.
	imp = New(client, state, exportDir, false, slog.Default())
	stats, err = imp.Run()
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.FilesSkipped != 2 || stats.FilesSent != 0 {
		t.Errorf("second run stats = %+v, want 2 skipped", stats)
	}
	if requests != 2 {
		t.Errorf("requests after rerun = %d, want still 2", requests)
	}
}

// TestRunDryRun verifies dry-run parses files without sending or recording.
func TestRunDryRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("dry run must not hit the server")
	}))
	defer srv.Close()

	exportDir := t.TempDir()
	writeExportFile(t, exportDir, "export.json", models.ExportPayload{
		Foods: []models.ExportFood{{ID: uuid.New(), Name: "Whey", Calories: 120}},
	})

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	imp := New(NewClient(srv.URL, "secret", ""), state, exportDir, true, slog.Default())
	stats, err := imp.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.FilesSent != 1 {
		t.Errorf("files sent = %d, want 1 (counted, not posted)", stats.FilesSent)
	}

	var recorded int
	if err := state.db.QueryRow(`SELECT COUNT(*) FROM imported_files`).Scan(&recorded); err != nil {
		t.Fatal(err)
	}
	if recorded != 0 {
		t.Error("dry run recorded state")
	}
}

// TestRunBadFileContinues verifies one malformed file doesn't stop the run.
func TestRunBadFileContinues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.ImportResult{})
	}))
	defer srv.Close()

	exportDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(exportDir, "bad.json"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeExportFile(t, exportDir, "good.json", models.ExportPayload{})

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	imp := New(NewClient(srv.URL, "secret", ""), state, exportDir, false, slog.Default())
	stats, err := imp.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.FilesErrored != 1 || stats.FilesSent != 1 {
		t.Errorf("stats = %+v, want 1 errored and 1 sent", stats)
	}
}
