// Package cmd holds the invoicechat command line: the backend server, the
// terminal chat and a one-shot ask.
package cmd

import (
	"github.com/spf13/cobra"

	"github/itish2003/invoicechat/config"
)

var (
	envFile  string
	logLevel string
)

// NewRootCommand assembles the invoicechat command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "invoicechat",
		Short: "Ask questions about your invoices",
		Long: `invoicechat indexes invoice documents into a vector store and answers
questions about them with Gemini.

  invoicechat serve                 # run the backend and the web chat
  invoicechat chat                  # chat from the terminal
  invoicechat ask "who is the seller?"`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(GetServeCommand())
	rootCmd.AddCommand(GetChatCommand())
	rootCmd.AddCommand(GetAskCommand())
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}
