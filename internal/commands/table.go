package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/qsplit-dev/qsplit/internal/split"
)

var hundred = decimal.NewFromInt(100)

// renderTable writes rows as an aligned table.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// renderPlan prints the per-account breakdown of a run before execution.
func renderPlan(w io.Writer, plan *split.Plan) {
	mode := "flat"
	if plan.VATMode {
		mode = "vat"
	}
	fmt.Fprintf(w, "Period %s to %s, splitting %s%% (%s)\n\n",
		plan.From.Format("2006-01-02"),
		plan.To.Format("2006-01-02"),
		plan.Percent.Mul(hundred).StringFixed(0),
		mode,
	)

	for _, batch := range plan.Batches {
		fmt.Fprintf(w, "%s (%d transactions)\n", batch.Account.Name, len(batch.Items))
		rows := make([][]string, 0, len(batch.Items)+1)
		for _, item := range batch.Items {
			rows = append(rows, []string{
				item.Transaction.EmittedAt.Format("2006-01-02"),
				item.Transaction.Label,
				item.Transaction.Amount.StringFixed(2),
				item.Split.StringFixed(2),
			})
		}
		rows = append(rows, []string{"", "Total", "", batch.Total.StringFixed(2)})
		renderTable(w, []string{"DATE", "LABEL", "AMOUNT", "SPLIT"}, rows)
		fmt.Fprintln(w)
	}
}
