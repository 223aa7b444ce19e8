// Package pdf renders the financial reports as PDF documents.
package pdf

import (
	"context"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	dredomain "github.com/smallbiznis/bookkeeper/internal/dre/domain"
	statementdomain "github.com/smallbiznis/bookkeeper/internal/statement/domain"
)

const ContentType = "application/pdf"

type Renderer interface {
	RenderDRE(ctx context.Context, report dredomain.Report) ([]byte, error)
	RenderStatement(ctx context.Context, statement statementdomain.Statement) ([]byte, error)
}

type MarotoRenderer struct{}

func New() Renderer {
	return &MarotoRenderer{}
}

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	return maroto.New(cfg)
}

func addTitle(m core.Maroto, title, period string) {
	m.AddRow(20,
		text.NewCol(12, title, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(10,
		text.NewCol(12, period, props.Text{Size: 10}),
	)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

var (
	headerText = props.Text{Style: fontstyle.Bold, Size: 9}
	bodyText   = props.Text{Size: 9}
	amountText = props.Text{Size: 9, Align: align.Right}
	boldAmount = props.Text{Size: 9, Align: align.Right, Style: fontstyle.Bold}
)

func spacer(size int) core.Col {
	return col.New(size)
}
