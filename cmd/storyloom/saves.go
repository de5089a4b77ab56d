package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "List or delete saved playthroughs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		del, _ := cmd.Flags().GetString("delete")
		out := cmd.OutOrStdout()

		st, closeStore := openStore()
		defer closeStore()

		if del != "" {
			if err := st.Delete(cmd.Context(), del); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %s.\n", del)
			return nil
		}

		names, err := st.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(out, n)
		}
		return nil
	},
}

func init() {
	savesCmd.Flags().String("delete", "", "Delete the named save")
	rootCmd.AddCommand(savesCmd)
}
