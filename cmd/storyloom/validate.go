package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nathoo/storyloom/loader"
)

var errInvalid = errors.New("story has errors")

var validateCmd = &cobra.Command{
	Use:   "validate <story>",
	Short: "Check a story for errors and suspicious structure",
	Long: `Reports malformed conditions and effects, a missing entry passage, dangling
choices, unreachable passages and empty text. With --walks, also plays the
story at random from the entry and reports endings and unvisited passages.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		walks, _ := cmd.Flags().GetInt("walks")
		seed, _ := cmd.Flags().GetInt64("seed")
		maxSteps, _ := cmd.Flags().GetInt("max-steps")
		out := cmd.OutOrStdout()

		eng, err := openStory(args[0])
		if err != nil {
			return err
		}

		report := loader.Validate(eng.Graph(), eng.Entry())
		for _, e := range report.Errors {
			fmt.Fprintf(out, "error: %s\n", e)
		}
		for _, w := range report.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}

		if walks > 0 {
			r := eng.Explore(seed, walks, maxSteps)
			fmt.Fprintf(out, "explored %d walks (seed %d, %d draws)\n", r.Runs, r.Seed, r.Draws)
			ends := make([]string, 0, len(r.Endings))
			for id := range r.Endings {
				ends = append(ends, id)
			}
			sort.Strings(ends)
			for _, id := range ends {
				fmt.Fprintf(out, "  ending %s: %d\n", id, r.Endings[id])
			}
			if r.Truncated > 0 {
				fmt.Fprintf(out, "  %d walks hit the %d-step limit\n", r.Truncated, maxSteps)
			}
			for _, id := range r.Unvisited(eng.Graph().IDs()) {
				fmt.Fprintf(out, "  never visited: %s\n", id)
			}
			for _, f := range r.Failures {
				fmt.Fprintf(out, "  %s failed at %s choice %d: %q: %s\n", f.Kind, f.Passage, f.Choice+1, f.Expr, f.Error)
			}
		}

		if report.Err() != nil {
			return fmt.Errorf("%w: %d error(s)", errInvalid, len(report.Errors))
		}
		fmt.Fprintf(out, "Story is valid (%d passages, %d warnings).\n", eng.Graph().Len(), len(report.Warnings))
		return nil
	},
}

func init() {
	validateCmd.Flags().Int("walks", 0, "Number of random playthroughs to run")
	validateCmd.Flags().Int64("seed", 1, "Seed for random playthroughs")
	validateCmd.Flags().Int("max-steps", 200, "Step limit per random playthrough")
	rootCmd.AddCommand(validateCmd)
}
