// Command analyze prints descriptive statistics over the collected experiment
// records and can export them to a spreadsheet for further analysis.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"tablelab/internal/analysis"
	"tablelab/internal/domain"
	"tablelab/internal/models"
	"tablelab/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	backend := flag.String("backend", "file", "results backend: file or sqlite")
	path := flag.String("results", "data/experiment-results.json", "path to the results file or database")
	exportDir := flag.String("export", "", "write an xlsx export into this directory")
	flag.Parse()

	results, err := loadResults(*backend, *path)
	if err != nil {
		return err
	}

	report, err := analysis.Analyze(results)
	if err != nil {
		return fmt.Errorf("analyze results: %w", err)
	}
	report.Print(os.Stdout)

	if *exportDir != "" {
		exportPath, err := analysis.ExportToExcel(results, *exportDir)
		if err != nil {
			return fmt.Errorf("export results: %w", err)
		}
		fmt.Printf("\nExported to %s\n", exportPath)
	}
	return nil
}

func loadResults(backend, path string) ([]models.ExperimentResult, error) {
	var (
		resultStore domain.ResultStore
		err         error
	)
	switch backend {
	case "file":
		resultStore, err = store.NewFileStore(path)
	case "sqlite":
		resultStore, err = store.NewSQLiteStore(path, nil)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open results store: %w", err)
	}
	defer resultStore.Close()

	return resultStore.List(context.Background())
}
