package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nathoo/storyloom/cli"
	"github.com/nathoo/storyloom/loader"
)

var editCmd = &cobra.Command{
	Use:   "edit <story>",
	Short: "Edit a story's passages and choices",
	Long: `Opens a line editor over the story. Edits are undoable and are written back
with "write". Lua stories must be written to a new .yaml or .json path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scriptFile, _ := cmd.Flags().GetString("script")

		eng, err := openStory(args[0])
		if err != nil {
			return err
		}

		path := args[0]
		if f, err := loader.FormatFor(path); err != nil || f == loader.FormatLua {
			path = ""
		}

		ed := cli.NewEditor(eng, path)
		ed.Out = cmd.OutOrStdout()
		if scriptFile != "" {
			f, err := os.Open(scriptFile)
			if err != nil {
				return fmt.Errorf("opening script: %w", err)
			}
			defer f.Close()
			ed.In = f
			ed.EchoInput = true
		}
		ed.Run()
		return nil
	},
}

func init() {
	editCmd.Flags().String("script", "", "Read editor commands from a file")
	rootCmd.AddCommand(editCmd)
}
