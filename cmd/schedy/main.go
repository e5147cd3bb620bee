package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/schedyio/schedy/internal/cli"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(os.Stderr)

	if err := cli.NewRootCommand(afero.NewOsFs(), InitializeDependencies).Execute(); err != nil {
		os.Exit(1)
	}
}
