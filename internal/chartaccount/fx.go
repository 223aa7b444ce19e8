package chartaccount

import (
	"github.com/smallbiznis/bookkeeper/internal/chartaccount/repository"
	"github.com/smallbiznis/bookkeeper/internal/chartaccount/service"
	"go.uber.org/fx"
)

var Module = fx.Module("chartaccount.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
