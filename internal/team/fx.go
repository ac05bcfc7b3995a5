package team

import (
	"github.com/taskhive/taskhive/internal/team/repository"
	"github.com/taskhive/taskhive/internal/team/service"
	"go.uber.org/fx"
)

var Module = fx.Module("team.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
