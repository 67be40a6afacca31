package auth

import (
	"github.com/campuswatt/gridline/internal/auth/repository"
	"github.com/campuswatt/gridline/internal/auth/service"
	"github.com/campuswatt/gridline/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth",
	token.Module,
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
