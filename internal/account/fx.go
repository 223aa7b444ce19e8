package account

import (
	"github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/account/repository"
	"github.com/smallbiznis/bookkeeper/internal/account/service"
	statementdomain "github.com/smallbiznis/bookkeeper/internal/statement/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(svc statementdomain.Service) domain.BalanceReader { return svc }),
	fx.Provide(service.NewService),
)
