package prediction

import (
	"github.com/campuswatt/gridline/internal/prediction/repository"
	"github.com/campuswatt/gridline/internal/prediction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("prediction",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
