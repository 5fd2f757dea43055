package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazemfarra/argus/internal/convlog"
	"github.com/hazemfarra/argus/internal/db"
	"github.com/hazemfarra/argus/internal/engine"
	"github.com/hazemfarra/argus/internal/progress"
	"github.com/hazemfarra/argus/internal/records"
)

// importLine is one record in the JSON-lines import format.
type importLine struct {
	Owner   string          `json:"owner"`
	Kind    records.Kind    `json:"kind"`
	Source  string          `json:"source"`
	Payload json.RawMessage `json:"payload"`
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Bulk-import records from a JSON-lines file",
	Long: `Reads one JSON object per line ({"owner": ..., "kind": ..., "source": ..., "payload": {...}})
and appends each as a record. The index is rebuilt once at the end, so
embeddings for all new records are computed in a single pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

var importKinds = map[records.Kind]bool{
	records.KindThreatReport:       true,
	records.KindSummaryReport:      true,
	records.KindClassifierAnalysis: true,
	records.KindOther:              true,
}

// parseImportLines reads the whole JSON-lines stream up front, so a malformed
// line aborts before any write. Classifier lines with a benign prediction are
// dropped here, the same policy engine.IngestClassifierResult enforces for
// every other ingest surface; the count of dropped lines is returned.
func parseImportLines(r io.Reader) ([]importLine, int, error) {
	var lines []importLine
	suppressed := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var line importLine
		if err := json.Unmarshal(text, &line); err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if line.Kind == "" {
			line.Kind = records.KindOther
		}
		if !importKinds[line.Kind] {
			return nil, 0, fmt.Errorf("line %d: unknown kind %q", lineNo, line.Kind)
		}
		if len(line.Payload) == 0 {
			return nil, 0, fmt.Errorf("line %d: payload is required", lineNo)
		}
		if line.Source == "" {
			line.Source = "import"
		}
		if line.Kind == records.KindClassifierAnalysis {
			var analysis records.ClassifierAnalysis
			if err := json.Unmarshal(line.Payload, &analysis); err != nil {
				return nil, 0, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if engine.Suppressed(analysis) {
				suppressed++
				continue
			}
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading import file: %w", err)
	}
	return lines, suppressed, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	lines, suppressed, err := parseImportLines(f)
	if err != nil {
		return err
	}
	if suppressed > 0 {
		fmt.Printf("Skipped %d benign classifier result(s).\n", suppressed)
	}
	if len(lines) == 0 {
		fmt.Println("Nothing to import.")
		return nil
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store := records.NewStore(database)

	reporter := progress.NewReporter()
	reporter.Start(len(lines))
	for i, line := range lines {
		if _, err := store.Append(ctx, line.Owner, line.Kind, line.Payload, line.Source); err != nil {
			reporter.Finish()
			return fmt.Errorf("line %d: %w", i+1, err)
		}
		reporter.Update(i+1, fmt.Sprintf("imported %s", line.Kind))
	}
	reporter.Finish()

	// One rebuild at the end embeds all new records in a single pass.
	eng := engine.New(store, createIndexFromConfig(cfg, store, embedder), convlog.NewStore(database), engine.Options{})
	if err := eng.Refresh(ctx); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}

	st := eng.Status()
	fmt.Printf("Imported %d record(s); store now holds %d (%d embedded).\n",
		len(lines), st.RecordCount, st.VectorCount)
	return nil
}
