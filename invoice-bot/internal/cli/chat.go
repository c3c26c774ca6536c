package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	draftmodel "notaFacilBot/invoice-bot/internal/domain/model/draft"
	messagemodel "notaFacilBot/invoice-bot/internal/domain/model/message"
	collectorservice "notaFacilBot/invoice-bot/internal/service/collector"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type chatOptions struct {
	replyDelay      time.Duration
	generationDelay time.Duration
}

func newChatCmd(root *rootOptions) *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Answer the assistant's questions to issue an invoice",
		Long: `Start a local data-collection session.

Each line is sent as an answer. End a line with "\" to continue the answer
on the next line (the same as Shift+Enter in the web form).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), root, opts, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().DurationVar(&opts.replyDelay, "reply-delay", time.Second, "Delay before the assistant replies")
	cmd.Flags().DurationVar(&opts.generationDelay, "generation-delay", 3*time.Second, "Duration of the generation phase")

	return cmd
}

func runChat(ctx context.Context, in io.Reader, out io.Writer, root *rootOptions, opts *chatOptions, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := collectorservice.Config{
		ReplyDelay:      opts.replyDelay,
		GenerationDelay: opts.generationDelay,
	}

	c, err := collectorservice.New(root.logger(errOut), uuid.NewString(), draftmodel.DefaultSchema(), cfg, nil, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// слушатель только будит цикл: в out пишет одна горутина
	wake := make(chan struct{}, 1)

	c.Subscribe(func(messagemodel.Message) {
		select {
		case wake <- struct{}{}:
		default:
		}
	})

	printed := 0
	indicator := ""

	scanner := bufio.NewScanner(in)

	for {
		st := c.Snapshot()

		for _, m := range st.Messages[printed:] {
			if m.IsFromAssistant {
				fmt.Fprintln(out, assistantStyle.Render(m.Text))
			}
		}
		printed = len(st.Messages)

		if st.Phase.Inert() {
			return nil
		}

		if st.Phase != collectorservice.PhaseCollecting {
			if st.Indicator != "" && st.Indicator != indicator {
				fmt.Fprintln(out, indicatorStyle.Render(st.Indicator))
			}
			indicator = st.Indicator

			select {
			case <-wake:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		indicator = ""

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return nil
		}

		line := scanner.Text()

		// "\" в конце строки - аналог Shift+Enter
		if strings.HasSuffix(line, `\`) {
			c.SetInput(st.Input + strings.TrimSuffix(line, `\`))
			c.KeyPress(collectorservice.KeyEnter, true)
			continue
		}

		c.SetInput(st.Input + line)
		c.KeyPress(collectorservice.KeyEnter, false)
	}
}
