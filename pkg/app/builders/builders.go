package builders

import (
	"github.com/google/wire"

	"github.com/schedyio/schedy/pkg/app"
	"github.com/schedyio/schedy/pkg/clientbase"
	"github.com/schedyio/schedy/pkg/schedy"
	ltime "github.com/schedyio/schedy/pkg/time"
)

// Builders provides a schedy client for a given *schedy.Config, along with
// the process lifecycle it is tied to.
var Builders = wire.NewSet(
	app.NewInstance,
	app.ContextFromInstance,
	clientbase.WireSet,
	ltime.NewWallWatch,
	wire.Bind(new(ltime.Watch), new(ltime.WallWatch)),
	schedy.NewClient,
)
