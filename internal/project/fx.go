package project

import (
	"github.com/taskhive/taskhive/internal/project/repository"
	"github.com/taskhive/taskhive/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
