package alert

import (
	"github.com/campuswatt/gridline/internal/alert/repository"
	"github.com/campuswatt/gridline/internal/alert/service"
	"github.com/campuswatt/gridline/internal/alert/sweeper"
	"go.uber.org/fx"
)

var Module = fx.Module("alert",
	sweeper.Module,
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
