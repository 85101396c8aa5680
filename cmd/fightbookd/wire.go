//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/fightbook/internal/config"
)

func initApp(ctx context.Context, cfg config.Config) (*app, func(), error) {
	wire.Build(providerSet)
	return nil, nil, nil
}
