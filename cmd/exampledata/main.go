package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Exios66/Cronbach-Alpha/internal/services"
)

// Writes the bundled example dataset as JSON and YAML fixture files and
// prints the full reliability report for it.
func main() {
	dir := flag.String("dir", ".", "directory to write example_data.json and example_data.yaml into")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	t := services.ExampleTable()

	jsonBytes, err := services.EncodeTableJSON(t)
	if err != nil {
		log.Fatalf("encode json: %v", err)
	}
	jsonPath := filepath.Join(*dir, "example_data.json")
	if err := os.WriteFile(jsonPath, jsonBytes, 0o644); err != nil {
		log.Fatalf("write %s: %v", jsonPath, err)
	}

	yamlBytes, err := services.EncodeTableYAML(t, "Example Scale")
	if err != nil {
		log.Fatalf("encode yaml: %v", err)
	}
	yamlPath := filepath.Join(*dir, "example_data.yaml")
	if err := os.WriteFile(yamlPath, yamlBytes, 0o644); err != nil {
		log.Fatalf("write %s: %v", yamlPath, err)
	}

	res, err := services.NewReliabilityAnalyzer(services.DefaultAnalysisOptions()).Analyze(t)
	if err != nil {
		log.Fatalf("analyze example data: %v", err)
	}
	report := services.RenderReport(res, services.ReportOptions{
		Title:             "Example Scale Reliability",
		ItemStatistics:    true,
		CorrelationMatrix: true,
	})

	fmt.Printf("wrote %s and %s\n\n", jsonPath, yamlPath)
	fmt.Print(report)
}
