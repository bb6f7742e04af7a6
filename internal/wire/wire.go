//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"github.com/sevigo/auto-me-bot/internal/app"
)

func InitializeApp() (*app.App, func(), error) {
	wire.Build(AppSet)
	return &app.App{}, nil, nil
}
