package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/evyataryagoni/ipscope/internal/config"
	"github.com/evyataryagoni/ipscope/internal/logger"
	"github.com/evyataryagoni/ipscope/internal/lookup"
	"github.com/evyataryagoni/ipscope/internal/provider"
	"github.com/evyataryagoni/ipscope/internal/service"
	"github.com/evyataryagoni/ipscope/internal/store"
	"github.com/evyataryagoni/ipscope/internal/view"
	"github.com/spf13/cobra"
)

type lookupOptions struct {
	provider    provider.Config
	jsonOutput  bool
	interactive bool
	verbose     bool
	cacheTTL    time.Duration
}

// NewLookupCmd returns the iplookup root command
// cfg supplies flag defaults.
func NewLookupCmd(cfg *config.Config) *cobra.Command {
	opts := &lookupOptions{
		provider: provider.Config{
			Type:       cfg.ProviderType,
			BaseURL:    cfg.ProviderBaseURL,
			Token:      cfg.ProviderToken,
			Timeout:    cfg.ProviderTimeout,
			CityDBPath: cfg.MMDBCityPath,
			ASNDBPath:  cfg.MMDBASNPath,
		},
		cacheTTL: cfg.CacheTTL,
	}

	cmd := &cobra.Command{
		Use:   "iplookup [address]",
		Short: "Look up the geographic location and network owner of an IPv4 address",
		Long: `Look up the geographic location and network owner of an IPv4 address.
Without an address, looks up this machine's public address.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.provider.Type, "provider", opts.provider.Type, "geolocation provider: ipinfo or mmdb")
	flags.StringVar(&opts.provider.BaseURL, "base-url", opts.provider.BaseURL, "ipinfo-compatible API base URL")
	flags.StringVar(&opts.provider.Token, "token", opts.provider.Token, "ipinfo API token")
	flags.DurationVar(&opts.provider.Timeout, "timeout", opts.provider.Timeout, "provider request timeout")
	flags.StringVar(&opts.provider.CityDBPath, "mmdb-city", opts.provider.CityDBPath, "GeoLite2 City database (mmdb provider)")
	flags.StringVar(&opts.provider.ASNDBPath, "mmdb-asn", opts.provider.ASNDBPath, "GeoLite2 ASN database (mmdb provider)")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print the view state as JSON")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "read further addresses from stdin, one per line")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log lookup steps to stderr")

	return cmd
}

func runLookup(cmd *cobra.Command, opts *lookupOptions, args []string) error {
	level := "error"
	if opts.verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Pretty: true, Output: cmd.ErrOrStderr()})

	p, err := provider.NewProvider(opts.provider)
	if err != nil {
		return err
	}

	// Session cache: repeated queries in interactive mode skip the network
	cache, err := store.NewCSVStore("", opts.cacheTTL)
	if err != nil {
		return err
	}

	svc := service.NewLookupService(cache, p, nil, log)
	defer svc.Close()

	r := newRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.jsonOutput)
	ctrl := lookup.NewController(svc, r)
	ctx := cmd.Context()

	query := func(address string) error {
		// Mirror what was typed, as an input field would
		r.SetInput(strings.TrimSpace(address))
		return r.run(func() error { return ctrl.SubmitQuery(ctx, address) })
	}

	if len(args) == 1 {
		err = query(args[0])
	} else {
		err = r.run(func() error { return ctrl.SubmitSelfQuery(ctx) })
	}

	if !opts.interactive {
		return err
	}

	// Failures were already rendered; keep reading and report the last one at the end
	failed := err
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		r.prompt()
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "exit" {
			break
		}
		if err := query(line); err != nil {
			failed = err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return failed
}

// renderer pairs a lookup.Renderer with the per-query output step
type renderer struct {
	lookup.Renderer

	out      io.Writer
	recorder *view.Recorder // JSON mode only
}

func newRenderer(out, status io.Writer, jsonOutput bool) *renderer {
	if jsonOutput {
		rec := view.NewRecorder()
		return &renderer{Renderer: rec, out: out, recorder: rec}
	}
	return &renderer{Renderer: view.NewTerminal(out, status), out: out}
}

// run submits one query and, in JSON mode, prints the resulting state
func (r *renderer) run(submit func() error) error {
	err := submit()
	if r.recorder != nil {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(r.recorder.State()); encErr != nil {
			return encErr
		}
	}
	return err
}

func (r *renderer) prompt() {
	if r.recorder == nil {
		fmt.Fprint(r.out, "> ")
	}
}
