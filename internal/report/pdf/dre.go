package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/props"
	dredomain "github.com/smallbiznis/bookkeeper/internal/dre/domain"
)

func (r *MarotoRenderer) RenderDRE(ctx context.Context, report dredomain.Report) ([]byte, error) {
	m := newDocument()
	addTitle(m, "Income Statement (DRE)", "Period: "+formatDate(report.DateFrom)+" to "+formatDate(report.DateTo))

	m.AddRow(10,
		text.NewCol(3, "Code", headerText),
		text.NewCol(6, "Description", headerText),
		text.NewCol(3, "Amount", props.Text{Style: headerText.Style, Size: 9, Align: align.Right}),
	)

	for _, line := range report.Lines {
		switch line.Kind {
		case dredomain.LineKindHeader, dredomain.LineKindTotal:
			m.AddRow(9,
				text.NewCol(9, line.Description, headerText),
				text.NewCol(3, money(line.Amount), boldAmount),
			)
		default:
			m.AddRow(7,
				text.NewCol(3, line.Code, bodyText),
				text.NewCol(6, line.Description, bodyText),
				text.NewCol(3, money(line.Amount), amountText),
			)
		}
	}

	m.AddRow(8)
	m.AddRow(8,
		spacer(6),
		text.NewCol(3, "Gross revenue", bodyText),
		text.NewCol(3, money(report.Indicators.GrossRevenue), amountText),
	)
	m.AddRow(8,
		spacer(6),
		text.NewCol(3, "Net result", bodyText),
		text.NewCol(3, money(report.Indicators.NetResult), amountText),
	)
	m.AddRow(8,
		spacer(6),
		text.NewCol(3, "Margin", bodyText),
		text.NewCol(3, money(report.Indicators.Margin)+" %", amountText),
	)

	return generate(m)
}
