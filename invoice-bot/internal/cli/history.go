package cli

import (
	"encoding/json"
	"fmt"
	"time"
	_ "time/tzdata"

	invoicemodel "notaFacilBot/invoice-bot/internal/domain/model/invoice"
	"notaFacilBot/invoice-bot/internal/repository"
	historyservice "notaFacilBot/invoice-bot/internal/service/history"
	historyclient "notaFacilBot/invoice-bot/pkg/client/history"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/cobra"
)

type historyOptions struct {
	query    string
	period   string
	source   string
	file     string
	remote   string
	timezone string
	today    string
	asJSON   bool
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Search the invoice history",
		Long: `Search the invoice history by text (description, client or number)
and period (all, yesterday, lastWeek).

The history is read from the built-in fixture, a YAML file, PostgreSQL or
an S3 object; connection settings for the latter come from the environment.
With --remote the search is delegated to a running invoice-bot over gRPC.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "Text to search for")
	cmd.Flags().StringVarP(&opts.period, "period", "p", "all", "Period: all, yesterday, lastWeek")
	cmd.Flags().StringVar(&opts.source, "source", repository.SourceFixture, "History source: fixture, file, postgres, s3")
	cmd.Flags().StringVar(&opts.file, "file", "", "YAML history file (with --source file)")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "gRPC address of a running invoice-bot")
	cmd.Flags().StringVar(&opts.timezone, "tz", "America/Sao_Paulo", "Time zone that defines \"today\"")
	cmd.Flags().StringVar(&opts.today, "today", "", "Override today's date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

func runHistory(cmd *cobra.Command, root *rootOptions, opts *historyOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if opts.remote != "" {
		return runRemoteHistory(cmd, opts)
	}

	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid time zone %q: %w", opts.timezone, err)
	}

	var cfg repository.Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return fmt.Errorf("failed to read history settings: %w", err)
	}

	if cmd.Flags().Changed("source") || cfg.Source == "" {
		cfg.Source = opts.source
	}
	if opts.file != "" {
		cfg.File.Path = opts.file
		if !cmd.Flags().Changed("source") {
			cfg.Source = repository.SourceFile
		}
	}

	repo, closeFn, err := repository.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	history := historyservice.New(root.logger(cmd.ErrOrStderr()), repo, loc)

	if opts.today != "" {
		day, err := invoicemodel.ParseDate(opts.today)
		if err != nil {
			return fmt.Errorf("invalid --today %q: %w", opts.today, err)
		}
		fixed := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, loc)
		history.WithClock(func() time.Time { return fixed })
	}

	result, err := history.Search(ctx, opts.query, opts.period)
	if err != nil {
		return err
	}

	view := historyView{
		invoices:   result.Views(),
		emptyTitle: historyservice.EmptyStateTitle,
		emptyHint:  result.EmptyStateMessage(),
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view.invoices)
	}

	renderHistory(out, view)

	return nil
}

func runRemoteHistory(cmd *cobra.Command, opts *historyOptions) error {
	client, err := historyclient.New(&historyclient.Config{Address: opts.remote, Timeout: 10 * time.Second})
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.Filter(cmd.Context(), opts.query, opts.period)
	if err != nil {
		return err
	}

	view := historyView{
		emptyTitle: resp.EmptyStateTitle,
		emptyHint:  resp.EmptyState,
	}

	for _, inv := range resp.Invoices {
		view.invoices = append(view.invoices, historyservice.InvoiceView{
			Id:             inv.Id,
			Description:    inv.Description,
			Client:         inv.Client,
			Value:          inv.Value,
			ValueFormatted: inv.ValueFormatted,
			Date:           inv.Date,
			DateFormatted:  inv.DateFormatted,
			Status:         inv.Status,
			StatusLabel:    inv.StatusLabel,
		})
	}

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view.invoices)
	}

	renderHistory(cmd.OutOrStdout(), view)

	return nil
}
