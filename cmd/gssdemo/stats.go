package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	gss "github.com/replay/go-generic-slab-store"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Run every demo and show the resulting slot tables",
		Long: `The stats command runs every demo against one registry, discards their
output and prints the occupancy of each slot table together with the
allocation counters.

Example:
  gssdemo stats
  gssdemo stats --checked`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, metrics, err := newRegistry(cmd)
			if err != nil {
				return err
			}
			if err := runAll(io.Discard, r); err != nil {
				return err
			}
			return printStats(cmd.OutOrStdout(), r, metrics)
		},
	}
}

func printStats(w io.Writer, r *gss.Registry, m *gss.BasicMetricsCollector) error {
	stats, err := r.Stats()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Tables: %d\n", len(stats))
	for _, s := range stats {
		fmt.Fprintf(w, "  %s\n", s)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Allocations:      %s (%s reused)\n", humanize.Comma(m.Allocs.Load()), humanize.Comma(m.ReusedAllocs.Load()))
	fmt.Fprintf(w, "Slots allocated:  %s\n", humanize.Comma(m.SlotsAlloced.Load()))
	fmt.Fprintf(w, "Frees:            %s (%s slots)\n", humanize.Comma(m.Frees.Load()), humanize.Comma(m.SlotsFreed.Load()))
	fmt.Fprintf(w, "Violations:       %s\n", humanize.Comma(m.Violations.Load()))
	return nil
}
