package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nathoo/storyloom/engine/save"
	"github.com/nathoo/storyloom/store"
)

var novelCmd = &cobra.Command{
	Use:   "novel <story>",
	Short: "Print a saved playthrough as prose",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		saveName, _ := cmd.Flags().GetString("save")

		eng, err := openStory(args[0])
		if err != nil {
			return err
		}
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

		p := eng.NewPlayer()
		p.Restore(ps)
		fmt.Fprint(cmd.OutOrStdout(), p.Novel())
		return nil
	},
}

func init() {
	novelCmd.Flags().String("save", store.DefaultName, "Save to render")
	rootCmd.AddCommand(novelCmd)
}
