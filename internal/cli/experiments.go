package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/api/iterator"

	"github.com/schedyio/schedy/pkg/schedy"
	"github.com/schedyio/schedy/pkg/schedy/policy"
)

func schedulerName(s policy.Scheduler) string {
	if s == nil {
		return "-"
	}
	return s.SchedulerName()
}

func (r *runner) experimentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "experiments",
		Aliases: []string{"experiment"},
		Short:   "list, show, create and remove the experiments of a project",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <project>",
		Short: "list the experiments of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.connect(func(ctx context.Context, client *schedy.Client) error {
				it, err := client.Project(args[0]).ListExperiments(ctx)
				if err != nil {
					return err
				}
				table := newTable(cmd.OutOrStdout())
				row(table, "NAME", "STATUS", "SCHEDULER", "HYPERPARAMETERS", "METRICS")
				for {
					e, err := it.Next(ctx)
					if err == iterator.Done {
						break
					}
					if err != nil {
						return err
					}
					row(table, e.Name, orDash(string(e.Status)), schedulerName(e.Scheduler),
						strings.Join(e.Hyperparameters, ", "), strings.Join(e.Metrics, ", "))
				}
				return table.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <project> <experiment>",
		Short: "show the definition of an experiment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.connect(func(ctx context.Context, client *schedy.Client) error {
				e, err := client.Project(args[0]).GetExperiment(ctx, args[1])
				if err != nil {
					return err
				}
				scheduler := "-"
				if e.Scheduler != nil {
					encoded, err := policy.Schedulers.Encode(e.Scheduler)
					if err != nil {
						// Schedulers decoded by a custom registry.
						encoded = json.RawMessage(fmt.Sprintf("%q", e.Scheduler.SchedulerName()))
					}
					scheduler = string(encoded)
				}

				table := newTable(cmd.OutOrStdout())
				row(table, "Project:", e.ProjectID)
				row(table, "Name:", e.Name)
				row(table, "Status:", orDash(string(e.Status)))
				row(table, "Hyperparameters:", orDash(strings.Join(e.Hyperparameters, ", ")))
				row(table, "Metrics:", orDash(strings.Join(e.Metrics, ", ")))
				row(table, "Scheduler:", scheduler)
				return table.Flush()
			})
		},
	})

	cmd.AddCommand(r.addExperimentCommand())

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <project> <experiment>",
		Short: "remove an experiment and its trials",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.connect(func(ctx context.Context, client *schedy.Client) error {
				return client.Project(args[0]).DeleteExperiment(ctx, args[1])
			})
		},
	})

	return cmd
}

func (r *runner) addExperimentCommand() *cobra.Command {
	var hyperparameters, metrics []string
	var scheduler, status string

	cmd := &cobra.Command{
		Use:   "add <project> <experiment>",
		Short: "create an experiment",
		Example: `  schedy experiments add mnist lr-search -p lr -p momentum -m loss \
    --scheduler '{"RandomSearch": {"lr": {"loguniform": {"base": 10, "lowExp": -4, "highExp": -1}}}}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def := schedy.ExperimentDef{
				Name:            args[1],
				Hyperparameters: hyperparameters,
				Metrics:         metrics,
				Status:          schedy.ExperimentStatus(status),
			}
			if scheduler != "" {
				s, err := policy.Schedulers.Decode(json.RawMessage(scheduler))
				if err != nil {
					return fmt.Errorf("--scheduler: %w", err)
				}
				def.Scheduler = s
			}

			return r.connect(func(ctx context.Context, client *schedy.Client) error {
				e, err := client.Project(args[0]).CreateExperiment(ctx, def)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created experiment %s in project %s\n", e.Name, e.ProjectID)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&hyperparameters, "hyperparameter", "p", nil, "name of a hyperparameter, repeatable")
	flags.StringArrayVarP(&metrics, "metric", "m", nil, "name of a metric, repeatable")
	flags.StringVar(&scheduler, "scheduler", "", `scheduler as JSON, for example {"Manual": null}`)
	flags.StringVar(&status, "status", "", "RUNNING or DONE")
	return cmd
}
