package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/brandkit/brand"
	"github.com/use-agent/brandkit/config"
	"github.com/use-agent/brandkit/models"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract a brand profile and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var (
	extractTimeout   time.Duration
	extractNoEnhance bool
	extractTiming    bool
)

func init() {
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 0, "Overall deadline (default: BRANDKIT_REQUEST_TIMEOUT)")
	extractCmd.Flags().BoolVar(&extractNoEnhance, "no-enhance", false, "Skip AI enhancement even when configured")
	extractCmd.Flags().BoolVar(&extractTiming, "timing", false, "Include the timing breakdown in the output")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if extractNoEnhance {
		cfg.Enhance.APIToken = ""
	}
	timeout := cfg.Server.RequestTimeout
	if extractTimeout > 0 {
		timeout = extractTimeout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	profile, timing, err := brand.NewFromConfig(cfg).Run(ctx, args[0])
	timing.TotalMs = time.Since(start).Milliseconds()
	if err != nil {
		return fmt.Errorf("extract %s: %w", args[0], err)
	}

	var out any = profile
	if extractTiming {
		out = models.BrandResponse{Success: true, Profile: profile, Timing: timing}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
