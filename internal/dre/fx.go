package dre

import (
	"github.com/smallbiznis/bookkeeper/internal/dre/repository"
	"github.com/smallbiznis/bookkeeper/internal/dre/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dre.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
