package cli

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/schedyio/schedy/pkg/app"
	"github.com/schedyio/schedy/pkg/schedy"
)

const description = `
schedy manages the projects, experiments and trials of a schedy service.

Credentials are read from ~/.schedy/client.json unless --config is given,
and can be overridden with the SCHEDY_ROOT, SCHEDY_EMAIL, SCHEDY_TOKEN and
SCHEDY_TOKEN_TYPE environment variables. Run "schedy gen-token" first.
`

type options struct {
	configPath string
	verbose    bool
	timeout    time.Duration
}

// runner carries what every command shares.
type runner struct {
	fs   afero.Fs
	init InitFunc
	opts options
}

func NewRootCommand(fs afero.Fs, init InitFunc) *cobra.Command {
	r := &runner{fs: fs, init: init}

	root := &cobra.Command{
		Use:               "schedy <command> [flags]",
		Short:             "command line client of the schedy experiment service.",
		Long:              description,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if r.opts.verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&r.opts.configPath, "config", "c", "", "configuration file (default ~/.schedy/client.json)")
	flags.BoolVarP(&r.opts.verbose, "verbose", "v", false, "log requests and responses")
	flags.DurationVar(&r.opts.timeout, "timeout", app.DefaultTimeout, "deadline of the command, negative for none")

	root.AddCommand(
		r.genTokenCommand(),
		r.projectsCommand(),
		r.experimentsCommand(),
		r.trialsCommand(),
	)
	return root
}

// connect loads the configuration and runs fn with a client.
func (r *runner) connect(fn func(ctx context.Context, client *schedy.Client) error) error {
	cfg, err := schedy.LoadConfig(r.fs, r.opts.configPath)
	if err != nil {
		return err
	}
	return r.run(cfg, fn)
}

func (r *runner) run(cfg *schedy.Config, fn func(ctx context.Context, client *schedy.Client) error) (err error) {
	deps, err := r.init(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := deps.App.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	ctx, cancel := app.TimeoutContext(deps.Ctx, r.opts.timeout)
	defer cancel()
	return fn(ctx, deps.Client)
}
