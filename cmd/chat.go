package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github/itish2003/invoicechat/logging"
	"github/itish2003/invoicechat/tui"
	"github/itish2003/invoicechat/widget"
)

var chatServerURL string

func GetChatCommand() *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the invoice assistant from the terminal",
		Long: `Opens a terminal chat against a running invoicechat server. Type a question
and press Enter; replies appear as they arrive.

Logs go to CHAT_LOG_FILE (default ~/.invoicechat/logs/invoicechat.log).`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}
	chatCmd.Flags().StringVarP(&chatServerURL, "server", "s", "", "Base URL of the invoicechat server (defaults to CHAT_SERVER_URL)")
	return chatCmd
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if chatServerURL != "" {
		cfg.ChatServerURL = chatServerURL
	}

	log, err := logging.NewFileLogger(cfg.ChatLogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("could not open chat log: %w", err)
	}
	log.WithField("server", cfg.ChatServerURL).Info("Starting terminal chat")

	return tui.Run(cmd.Context(), "Invoice Assistant", widget.NewClient(cfg.ChatServerURL, nil), log)
}
