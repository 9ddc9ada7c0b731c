package cli

import (
	"fmt"

	"github.com/evyataryagoni/ipscope/internal/config"
	"github.com/evyataryagoni/ipscope/internal/store"
	"github.com/spf13/cobra"
)

// NewLoadCacheCmd returns the command that warms the Redis cache from a CSV seed file
func NewLoadCacheCmd(cfg *config.Config) *cobra.Command {
	var (
		file          = cfg.DatastorePath
		redisAddr     = cfg.RedisAddr
		redisPassword = cfg.RedisPassword
		redisDB       = cfg.RedisDB
	)

	cmd := &cobra.Command{
		Use:           "load-cache",
		Short:         "Load geolocation payloads from a CSV file into Redis",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Connecting to Redis at %s...\n", redisAddr)
			// Seeded entries never expire, so the TTL is irrelevant here
			redisStore, err := store.NewRedisStore(redisAddr, redisPassword, redisDB, 0)
			if err != nil {
				return err
			}
			defer redisStore.Close()

			fmt.Fprintf(out, "Loading %s...\n", file)
			count, err := redisStore.LoadFromCSV(cmd.Context(), file)
			if err != nil {
				return fmt.Errorf("failed to load CSV data: %w", err)
			}

			fmt.Fprintf(out, "Loaded %d entries. Start the server with DATASTORE_TYPE=redis\n", count)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&file, "file", "f", file, "CSV seed file")
	flags.StringVar(&redisAddr, "redis-addr", redisAddr, "Redis address")
	flags.StringVar(&redisPassword, "redis-password", redisPassword, "Redis password")
	flags.IntVar(&redisDB, "redis-db", redisDB, "Redis database number")

	return cmd
}
