//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/schedyio/schedy/internal/cli"
	"github.com/schedyio/schedy/pkg/app/builders"
	"github.com/schedyio/schedy/pkg/schedy"
)

// wire up the dependencies.
func InitializeDependencies(cfg *schedy.Config) (*cli.Dependencies, error) {
	wire.Build(builders.Builders, cli.NewDependencies)
	return &cli.Dependencies{}, nil
}
