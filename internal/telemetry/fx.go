package telemetry

import (
	"github.com/campuswatt/gridline/internal/telemetry/repository"
	"github.com/campuswatt/gridline/internal/telemetry/service"
	"go.uber.org/fx"
)

var Module = fx.Module("telemetry",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
