package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathoo/storyloom/config"
	"github.com/nathoo/storyloom/engine"
	"github.com/nathoo/storyloom/loader"
	"github.com/nathoo/storyloom/logging"
	"github.com/nathoo/storyloom/store"
)

// app carries settings resolved once per invocation.
var app struct {
	cfg *config.Config
	log *zap.Logger
}

var rootCmd = &cobra.Command{
	Use:           "storyloom",
	Short:         "Storyloom plays and edits branching interactive fiction",
	Long:          `Storyloom loads YAML, JSON or Lua story files and lets you play, edit, lint and export them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("entry") {
			cfg.Entry, _ = flags.GetString("entry")
		}
		if flags.Changed("log-level") {
			cfg.LogLevel, _ = flags.GetString("log-level")
		}
		if flags.Changed("history-depth") {
			cfg.HistoryDepth, _ = flags.GetInt("history-depth")
		}
		log, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		app.cfg, app.log = cfg, log
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app.log != nil {
			_ = app.log.Sync()
		}
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("entry", "start", "Entry passage identifier")
	rootCmd.PersistentFlags().String("log-level", "warn", "Diagnostics level: debug, info, warn or error")
	rootCmd.PersistentFlags().Int("history-depth", 50, "Undo history depth for editing")
}

// openStory loads a story file or Lua directory into a new engine.
func openStory(path string) (*engine.Engine, error) {
	g, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading story: %w", err)
	}
	app.log.Debug("story loaded", zap.String("path", path), zap.Int("passages", g.Len()))
	return engine.New(g,
		engine.WithLogger(app.log),
		engine.WithEntry(app.cfg.Entry),
		engine.WithHistoryDepth(app.cfg.HistoryDepth),
	), nil
}

// openStore returns the configured save store and a function releasing it.
func openStore() (store.Store, func()) {
	if app.cfg.UseRedis() {
		rs := store.NewRedisStore(app.cfg.RedisAddr, store.WithPrefix(app.cfg.RedisPrefix))
		app.log.Debug("using redis saves", zap.String("addr", app.cfg.RedisAddr))
		return rs, func() { _ = rs.Close() }
	}
	return store.NewFileStore(app.cfg.SaveDir), func() {}
}
