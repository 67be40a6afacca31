package control

import (
	"github.com/campuswatt/gridline/internal/control/repository"
	"github.com/campuswatt/gridline/internal/control/service"
	"go.uber.org/fx"
)

var Module = fx.Module("control",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
