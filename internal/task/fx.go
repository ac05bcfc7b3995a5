package task

import (
	"github.com/taskhive/taskhive/internal/task/repository"
	"github.com/taskhive/taskhive/internal/task/service"
	"go.uber.org/fx"
)

var Module = fx.Module("task.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
