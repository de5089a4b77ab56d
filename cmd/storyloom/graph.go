package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nathoo/storyloom/engine/save"
	"github.com/nathoo/storyloom/engine/script"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <story>",
	Short: "Export the story graph as a Mermaid flowchart",
	Long: `Outputs a Mermaid diagram (graph TD) of every passage and choice. With
--save, the passages visited in that save and the current passage are marked.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		saveName, _ := cmd.Flags().GetString("save")

		eng, err := openStory(args[0])
		if err != nil {
			return err
		}

		var overlay *script.Overlay
		if saveName != "" {
			st, closeStore := openStore()
			defer closeStore()
			blob, err := st.Load(cmd.Context(), saveName)
			if err != nil {
				return err
			}
			ps, err := save.Decode(blob)
			if err != nil {
				return err
			}
			overlay = &script.Overlay{Current: ps.CurrentPassage}
			for _, h := range ps.History {
				overlay.Visited = append(overlay.Visited, h.Passage)
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), eng.Mermaid(overlay))
		return nil
	},
}

func init() {
	graphCmd.Flags().String("save", "", "Mark progress from a named save")
	rootCmd.AddCommand(graphCmd)
}
