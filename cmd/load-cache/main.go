package main

import (
	"fmt"
	"os"

	"github.com/evyataryagoni/ipscope/internal/cli"
	"github.com/evyataryagoni/ipscope/internal/config"
)

// This tool loads geolocation payloads from CSV into Redis
// Usage: go run ./cmd/load-cache --file data/geo_seed.csv
func main() {
	if err := cli.NewLoadCacheCmd(config.Load()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "load-cache:", err)
		os.Exit(1)
	}
}
