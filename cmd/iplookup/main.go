package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/evyataryagoni/ipscope/internal/cli"
	"github.com/evyataryagoni/ipscope/internal/config"
	"github.com/evyataryagoni/ipscope/internal/geo"
)

// iplookup looks up IPv4 addresses from the terminal
// Usage: iplookup [address] [--json] [--interactive]
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.NewLookupCmd(config.Load()).ExecuteContext(ctx)
	if err == nil {
		return
	}

	// Lookup failures were already rendered; only report setup errors
	if geo.Kind(err) == "unexpected" {
		fmt.Fprintln(os.Stderr, "iplookup:", err)
	}
	os.Exit(1)
}
