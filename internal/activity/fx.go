package activity

import (
	"github.com/taskhive/taskhive/internal/activity/repository"
	"github.com/taskhive/taskhive/internal/activity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("activity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
