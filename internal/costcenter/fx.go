package costcenter

import (
	"github.com/smallbiznis/bookkeeper/internal/costcenter/repository"
	"github.com/smallbiznis/bookkeeper/internal/costcenter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("costcenter.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
