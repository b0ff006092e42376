package main

import (
	"position-report-extractor/internal/cli"
	"position-report-extractor/internal/logging"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Log.Fatalf("Error: %v", err)
	}
}
