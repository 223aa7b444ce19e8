package pdf

import "go.uber.org/fx"

var Module = fx.Module("report.pdf",
	fx.Provide(New),
)
