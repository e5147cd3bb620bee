package clientbase

import (
	"github.com/google/wire"

	cbhttp "github.com/schedyio/schedy/pkg/clientbase/http"
)

var WireSet = wire.NewSet(
	NewConfigFromEnv,
	cbhttp.NewConfigFromEnv,
	cbhttp.NewInstance,
	NewConnections,
)
