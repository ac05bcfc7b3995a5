package comment

import (
	"github.com/taskhive/taskhive/internal/comment/repository"
	"github.com/taskhive/taskhive/internal/comment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("comment.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
