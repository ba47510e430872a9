package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/progress-engine/internal/app"
	"github.com/yungbote/progress-engine/internal/platform/envutil"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:   "progressctl",
	Short: "Operate the lesson progress engine from a shell",
	Long: `progressctl runs reports and maintenance against the same store the
API server uses. It reads the same environment and PROGRESS_CONFIG_FILE.`,
	SilenceUsage: true,
}

var timeout time.Duration

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "deadline for the whole command")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withServices opens the store, runs fn and closes everything again.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, s app.Services) (any, error)) error {
	log, err := logger.New(envutil.String("LOG_MODE", "test"))
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := app.LoadConfig(log)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a, err := app.NewServices(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := fn(ctx, a.Services)
	// Cascade counts are still worth printing when some collections failed.
	if _, counts := out.(map[string]any); err == nil || counts {
		if encErr := printJSON(cmd, out); encErr != nil && err == nil {
			err = encErr
		}
	}
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %q is not a uuid", name, raw)
	}
	return id, nil
}
