package user

import (
	"github.com/taskhive/taskhive/internal/user/repository"
	"github.com/taskhive/taskhive/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
