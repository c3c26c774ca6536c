package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	historyservice "notaFacilBot/invoice-bot/internal/service/history"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("212")).
		Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62"))

	indicatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)
)

type historyView struct {
	invoices   []historyservice.InvoiceView
	emptyTitle string
	emptyHint  string
}

func renderHistory(w io.Writer, v historyView) {
	if len(v.invoices) == 0 {
		fmt.Fprintln(w, headerStyle.Render(v.emptyTitle))
		fmt.Fprintln(w, emptyStyle.Render(v.emptyHint))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Notas fiscais (%d)", len(v.invoices))))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, inv := range v.invoices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			idStyle.Render(inv.Id),
			inv.Description,
			inv.Client,
			valueStyle.Render(inv.ValueFormatted),
			dateStyle.Render(inv.DateFormatted),
			statusStyle.Render(inv.StatusLabel),
		)
	}
	tw.Flush()
}
