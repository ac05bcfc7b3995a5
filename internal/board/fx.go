package board

import (
	"github.com/taskhive/taskhive/internal/board/repository"
	"github.com/taskhive/taskhive/internal/board/service"
	"go.uber.org/fx"
)

var Module = fx.Module("board.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
