package line

import (
	"github.com/campuswatt/gridline/internal/line/repository"
	"github.com/campuswatt/gridline/internal/line/service"
	"go.uber.org/fx"
)

var Module = fx.Module("line",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
