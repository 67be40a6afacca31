package topup

import (
	"github.com/campuswatt/gridline/internal/topup/repository"
	"github.com/campuswatt/gridline/internal/topup/service"
	"go.uber.org/fx"
)

var Module = fx.Module("topup",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
