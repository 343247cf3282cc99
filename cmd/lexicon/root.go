package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jacentio/lexicon/internal/config"
	"github.com/jacentio/lexicon/internal/logging"
)

// app carries state resolved before any subcommand runs.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	v := config.New()

	root := &cobra.Command{
		Use:   "lexicon",
		Short: "Content-addressed string analyzer",
		Long: `lexicon stores strings by the SHA-256 of their value together with derived
properties (length, palindrome, word count, character frequencies) and lets
you query them with structured filters or simple English.

Examples:
  lexicon add "A man a plan"                    # Analyze and store a string
  lexicon get "A man a plan"                    # Fetch by value or hash
  lexicon ls --palindrome=true --min-length 3   # Filter stored strings
  lexicon ask "single word palindromic strings" # Natural-language filter
  lexicon rm "A man a plan"                     # Delete by value or hash
  lexicon lambda                                # Serve the HTTP API on Lambda`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, a.cfgFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (TOML or YAML)")
	root.PersistentFlags().String("backend", "", "storage backend: dynamodb, sqlite or memory")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	_ = v.BindPFlag("backend", root.PersistentFlags().Lookup("backend"))
	_ = v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		newAddCmd(a),
		newGetCmd(a),
		newRmCmd(a),
		newLsCmd(a),
		newAskCmd(a),
		newLambdaCmd(a),
		newStreamCmd(a),
	)
	return root
}
