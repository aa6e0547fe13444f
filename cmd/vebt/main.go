// Vebt builds a van Emde Boas search tree over the demo keys, runs the demo
// queries against it and prints a block transfer comparison.
//
// Usage:
//
//	go run ./cmd/vebt -config config.yaml -height 4 -profile 4095
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/rs/zerolog"

	internal "github.com/ZanzyTHEbar/vebtree/vebt"
	"github.com/ZanzyTHEbar/vebtree/vebt/analysis"
	"github.com/ZanzyTHEbar/vebtree/vebt/config"
	"github.com/ZanzyTHEbar/vebtree/vebt/layout"
)

func main() {
	configFlag := flag.String("config", "", "path to a config file (default: search standard locations)")
	heightFlag := flag.Int("height", 4, "height of the rank to slot table to print")
	profileFlag := flag.Int("profile", 4095, "key count for the block transfer comparison (0 disables it)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger := internal.GetLogger(cfg.Log.Level)

	if err := run(context.Background(), os.Stdout, cfg, logger, *heightFlag, *profileFlag); err != nil {
		logger.Error().Err(err).Msg("vebt failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, w io.Writer, cfg *config.Config, logger zerolog.Logger, height, profileKeys int) error {
	if err := printMapping(w, height); err != nil {
		return err
	}

	keys := []byte(cfg.Demo.Keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	opts := append(cfg.LayoutOptions(), layout.WithLogger(logger))
	tree, err := layout.Build(keys, opts...)
	if err != nil {
		return fmt.Errorf("failed to build layout: %w", err)
	}
	fmt.Fprintf(w, "%s\n", tree.Layout())

	queries := []byte(cfg.Demo.Queries)
	results, err := tree.SearchAll(ctx, queries)
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}
	for i, q := range queries {
		res := results[i]
		if res.Found {
			fmt.Fprintf(w, "Found %c at rank %d, slot %d\n", q, res.Rank, res.Slot)
			continue
		}
		fmt.Fprintf(w, "Missing %c, would insert at %d (branch %d)\n", q, res.Insert, res.Branch)
	}

	if profileKeys <= 0 {
		return nil
	}
	collector := analysis.NewCollector()
	if err := collector.Collect(ctx, profileKeys, analysis.Kinds, cfg.Analysis.BlockSizes); err != nil {
		return fmt.Errorf("failed to profile layouts: %w", err)
	}
	logger.Debug().Dur("elapsed", collector.Elapsed()).Int("keys", profileKeys).Msg("profiled layouts")
	return printProfiles(w, collector.Profiles())
}

func printMapping(w io.Writer, height int) error {
	if height < 1 || height > 8 {
		return fmt.Errorf("mapping height must be in [1, 8], got %d", height)
	}
	for r := 1; r < layout.PowerOfTwo(height); r++ {
		slot, err := layout.Slot(uint64(r), uint64(height))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "rank %3d -> slot %3d\n", r, slot)
	}
	return nil
}

func printProfiles(w io.Writer, profiles []analysis.BlockProfile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "keys\tblock\tlayout\tprobes\tmean\tstddev\tmax")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%.2f\t%.2f\t%.2f\t%.0f\n",
			p.Keys, p.BlockSize, p.Layout, p.Probes, p.Mean, p.StdDev, p.Max)
	}
	return tw.Flush()
}
