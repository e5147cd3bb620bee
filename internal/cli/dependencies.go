package cli

import (
	"context"

	"github.com/schedyio/schedy/pkg/app"
	"github.com/schedyio/schedy/pkg/clientbase"
	"github.com/schedyio/schedy/pkg/schedy"
)

// Dependencies is what a command needs once the configuration is known.
type Dependencies struct {
	Ctx    context.Context
	App    *app.Instance
	Client *schedy.Client
}

func NewDependencies(ctx context.Context, instance *app.Instance, connections *clientbase.Connections, client *schedy.Client) *Dependencies {
	instance.AddCloser(connections)
	return &Dependencies{
		Ctx:    ctx,
		App:    instance,
		Client: client,
	}
}

// InitFunc builds the dependencies for a configuration, see
// cmd/schedy InitializeDependencies.
type InitFunc func(cfg *schedy.Config) (*Dependencies, error)
