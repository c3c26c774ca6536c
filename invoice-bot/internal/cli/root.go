package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"notaFacilBot/invoice-bot/internal/pkg/logger/handlers/slogpretty"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

type rootOptions struct {
	verbose bool
}

// NewRootCmd собирает дерево команд invoicectl.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "invoicectl",
		Short: "Terminal client for NotaFácil invoices",
		Long: `invoicectl talks to the NotaFácil invoice assistant from the terminal.

Quick Start:
  invoicectl history                       # list the invoice history
  invoicectl history -q tech -p lastWeek   # search within the last 7 days
  invoicectl chat                          # answer the assistant's questions`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	cmd.AddCommand(
		newHistoryCmd(opts),
		newChatCmd(opts),
	)

	return cmd
}

// Execute запускает CLI и завершает процесс с кодом 1 при ошибке.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}

	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{Level: level},
	}

	return slog.New(opts.NewPrettyHandler(w))
}
