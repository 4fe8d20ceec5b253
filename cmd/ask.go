package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github/itish2003/invoicechat/logging"
	"github/itish2003/invoicechat/widget"
)

var askServerURL string

func GetAskCommand() *cobra.Command {
	askCmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask one question and print the transcript",
		Long: `Sends a single question to a running invoicechat server and prints the
"User:" and "Assistant:" lines. Failures are logged to stderr.

Example:
  invoicechat ask what is the GST number of the seller`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}
	askCmd.Flags().StringVarP(&askServerURL, "server", "s", "", "Base URL of the invoicechat server (defaults to CHAT_SERVER_URL)")
	return askCmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if askServerURL != "" {
		cfg.ChatServerURL = askServerURL
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	askOnce(cmd, widget.NewClient(cfg.ChatServerURL, nil), strings.Join(args, " "), log)
	return nil
}

// askOnce drives one widget interaction and waits for its reply.
func askOnce(cmd *cobra.Command, asker widget.Asker, question string, log logrus.FieldLogger) {
	out := cmd.OutOrStdout()
	transcript := widget.NewTranscript()
	transcript.OnAppend(func(line string) {
		fmt.Fprintln(out, line)
	})

	w := widget.New(widget.NewField(question), transcript, asker, log)
	w.Click(cmd.Context())
	w.Wait()
}
