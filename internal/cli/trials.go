package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/api/iterator"

	"github.com/schedyio/schedy/pkg/schedy"
)

func (r *runner) trialsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "trials",
		Aliases: []string{"trial"},
		Short:   "list, show, push and remove the trials of an experiment",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <project> <experiment>",
		Short: "list the trials of an experiment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.connect(func(ctx context.Context, client *schedy.Client) error {
				it, err := client.Project(args[0]).Experiment(args[1]).ListTrials(ctx)
				if err != nil {
					return err
				}
				table := newTable(cmd.OutOrStdout())
				row(table, "ID", "STATUS", "HYPERPARAMETERS", "METRICS")
				for {
					trial, err := it.Next(ctx)
					if err == iterator.Done {
						break
					}
					if err != nil {
						return err
					}
					row(table, trial.ID, string(trial.Status), formatScalars(trial.Hyperparameters), formatMetrics(trial.Metrics))
				}
				return table.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <project> <experiment> <trial>",
		Short: "show a trial",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.connect(func(ctx context.Context, client *schedy.Client) error {
				trial, err := client.Project(args[0]).Experiment(args[1]).GetTrial(ctx, args[2])
				if err != nil {
					return err
				}
				table := newTable(cmd.OutOrStdout())
				row(table, "ID:", trial.ID)
				row(table, "Status:", string(trial.Status))
				row(table, "Version:", orDash(trial.ETag))
				row(table, "Hyperparameters:", orDash(formatScalars(trial.Hyperparameters)))
				row(table, "Metrics:", orDash(formatMetrics(trial.Metrics)))
				row(table, "Metadata:", orDash(formatScalars(trial.Metadata)))
				return table.Flush()
			})
		},
	})

	cmd.AddCommand(r.pushTrialCommand())

	var ensure bool
	rm := &cobra.Command{
		Use:   "rm <project> <experiment> <trial>",
		Short: "remove a trial",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.connect(func(ctx context.Context, client *schedy.Client) error {
				return client.Project(args[0]).Experiment(args[1]).DeleteTrial(ctx, args[2], ensure)
			})
		},
	}
	rm.Flags().BoolVar(&ensure, "ensure", false, "fail if the trial does not exist")
	cmd.AddCommand(rm)

	return cmd
}

func (r *runner) pushTrialCommand() *cobra.Command {
	var id, hyperparameters, metrics, metadata, status string

	cmd := &cobra.Command{
		Use:     "push <project> <experiment>",
		Short:   "create a trial",
		Example: `  schedy trials push mnist lr-search --hyperparameters '{"lr": 0.01, "layers": 3}'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var spec schedy.TrialSpec
			var err error
			if spec.Hyperparameters, err = parseScalars(hyperparameters); err != nil {
				return fmt.Errorf("--hyperparameters: %w", err)
			}
			if spec.Metadata, err = parseScalars(metadata); err != nil {
				return fmt.Errorf("--metadata: %w", err)
			}
			if spec.Metrics, err = parseMetrics(metrics); err != nil {
				return fmt.Errorf("--metrics: %w", err)
			}
			spec.Status = schedy.TrialStatus(status)
			if status != "" && !spec.Status.Valid() {
				return fmt.Errorf("--status: unknown trial status %q", status)
			}

			return r.connect(func(ctx context.Context, client *schedy.Client) error {
				experiment := client.Project(args[0]).Experiment(args[1])
				var trial *schedy.Trial
				if id != "" {
					trial, err = experiment.CreateTrialWithID(ctx, id, spec)
				} else {
					trial, err = experiment.CreateTrial(ctx, spec)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created trial %s\n", trial.ID)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&id, "id", "", "id of the trial, assigned by the service when empty")
	flags.StringVar(&hyperparameters, "hyperparameters", "", "hyperparameters as a JSON object")
	flags.StringVar(&metrics, "metrics", "", "metrics as a JSON object of numbers")
	flags.StringVar(&metadata, "metadata", "", "metadata as a JSON object")
	flags.StringVar(&status, "status", "", "initial status, QUEUED by default")
	return cmd
}
