package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2/pkg/components/text"
	statementdomain "github.com/smallbiznis/bookkeeper/internal/statement/domain"
)

func (r *MarotoRenderer) RenderStatement(ctx context.Context, statement statementdomain.Statement) ([]byte, error) {
	m := newDocument()
	addTitle(m, "Account Statement", "Period: "+formatOptionalDate(statement.DateFrom)+" to "+formatOptionalDate(statement.DateTo))

	m.AddRow(8,
		spacer(8),
		text.NewCol(2, "Opening balance", bodyText),
		text.NewCol(2, money(statement.Totals.OpeningBalance), amountText),
	)

	m.AddRow(10,
		text.NewCol(1, "Code", headerText),
		text.NewCol(2, "Date", headerText),
		text.NewCol(4, "History", headerText),
		text.NewCol(1, "Op", headerText),
		text.NewCol(2, "Amount", headerText),
		text.NewCol(2, "Balance", headerText),
	)

	for _, line := range statement.Lines {
		balance := "pending"
		if line.BalanceAfter != nil {
			balance = money(*line.BalanceAfter)
		}
		m.AddRow(7,
			text.NewCol(1, fmt.Sprintf("%d", line.Code), bodyText),
			text.NewCol(2, formatDate(line.IssueDate), bodyText),
			text.NewCol(4, line.History, bodyText),
			text.NewCol(1, string(line.Operation), bodyText),
			text.NewCol(2, money(line.Amount), amountText),
			text.NewCol(2, balance, amountText),
		)
	}

	totals := statement.Totals
	m.AddRow(8)
	for _, row := range []struct {
		label string
		value string
	}{
		{"Total inputs", money(totals.TotalInputs)},
		{"Total outputs", money(totals.TotalOutputs)},
		{"Closing balance", money(totals.ClosingBalance)},
		{"To confirm", fmt.Sprintf("%d (%s)", totals.ToConfirmQty, money(totals.ToConfirmValue))},
	} {
		m.AddRow(8,
			spacer(8),
			text.NewCol(2, row.label, bodyText),
			text.NewCol(2, row.value, amountText),
		)
	}

	return generate(m)
}
