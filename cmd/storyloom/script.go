package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scriptCmd = &cobra.Command{
	Use:   "script <story>",
	Short: "Print the branching script of a story",
	Long: `Walks the story depth-first from the entry passage and prints every
passage once, with its choices, conditions and effects, indented by depth.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openStory(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), eng.Script())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scriptCmd)
}
