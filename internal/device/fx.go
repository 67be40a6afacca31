package device

import (
	"github.com/campuswatt/gridline/internal/device/repository"
	"github.com/campuswatt/gridline/internal/device/service"
	"go.uber.org/fx"
)

var Module = fx.Module("device",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
