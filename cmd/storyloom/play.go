package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nathoo/storyloom/cli"
	"github.com/nathoo/storyloom/engine/save"
	"github.com/nathoo/storyloom/tui"
)

var playCmd = &cobra.Command{
	Use:   "play <story>",
	Short: "Play a story",
	Long: `Plays a story from its entry passage. The full-screen player is used when
stdout is a terminal; --plain or --script force the line-based player.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")
		scriptFile, _ := cmd.Flags().GetString("script")
		markdown, _ := cmd.Flags().GetBool("markdown")
		trace, _ := cmd.Flags().GetBool("trace")
		resume, _ := cmd.Flags().GetString("load")

		eng, err := openStory(args[0])
		if err != nil {
			return err
		}
		st, closeStore := openStore()
		defer closeStore()

		ctx := cmd.Context()

		// Script mode: open file, force plain, echo input.
		if scriptFile != "" || plain || !term.IsTerminal(int(os.Stdout.Fd())) {
			c := cli.New(eng, st)
			c.Out = cmd.OutOrStdout()
			c.Trace = trace
			if scriptFile != "" {
				f, err := os.Open(scriptFile)
				if err != nil {
					return fmt.Errorf("opening script: %w", err)
				}
				defer f.Close()
				c.In = f
				c.EchoInput = true
			}
			if resume != "" {
				blob, err := st.Load(ctx, resume)
				if err != nil {
					return err
				}
				ps, err := save.Decode(blob)
				if err != nil {
					return err
				}
				c.Player.Restore(ps)
			}
			c.Run(ctx)
			return nil
		}

		var opts []tui.Option
		if markdown {
			opts = append(opts, tui.WithMarkdown())
		}
		if resume != "" {
			opts = append(opts, tui.WithResume(resume))
		}
		return tui.Run(ctx, eng, st, opts...)
	},
}

func init() {
	playCmd.Flags().Bool("plain", false, "Use the line-based player")
	playCmd.Flags().String("script", "", "Read player input from a file (implies --plain)")
	playCmd.Flags().Bool("markdown", false, "Render passage text as markdown in the full-screen player")
	playCmd.Flags().Bool("trace", false, "Print runtime events after each choice")
	playCmd.Flags().String("load", "", "Resume from a named save")
	rootCmd.AddCommand(playCmd)
}
