package auth

import (
	"time"

	"github.com/taskhive/taskhive/internal/auth/token"
	"github.com/taskhive/taskhive/internal/clock"
	"github.com/taskhive/taskhive/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth",
	fx.Provide(func(cfg config.Config, clk clock.Clock) *token.Issuer {
		ttl := time.Duration(cfg.AuthTokenTTLHrs) * time.Hour
		return token.NewIssuer(cfg.AuthJWTSecret, ttl, clk)
	}),
)
