package block

import (
	"github.com/campuswatt/gridline/internal/block/repository"
	"github.com/campuswatt/gridline/internal/block/service"
	"go.uber.org/fx"
)

var Module = fx.Module("block",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
