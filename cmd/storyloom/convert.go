package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nathoo/storyloom/loader"
)

var convertCmd = &cobra.Command{
	Use:   "convert <story> <out.yaml|out.json>",
	Short: "Rewrite a story in another format",
	Long:  `Loads a YAML, JSON or Lua story and writes it as YAML or JSON, picked by the output extension.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := loader.FormatFor(args[1])
		if err != nil {
			return err
		}
		eng, err := openStory(args[0])
		if err != nil {
			return err
		}
		data, err := loader.Marshal(eng.Graph(), format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d passages to %s.\n", eng.Graph().Len(), args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
