package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/api/iterator"

	"github.com/schedyio/schedy/pkg/schedy"
)

func (r *runner) projectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "list, create and remove projects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "list the projects of the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.connect(func(ctx context.Context, client *schedy.Client) error {
				it, err := client.ListProjects(ctx)
				if err != nil {
					return err
				}
				table := newTable(cmd.OutOrStdout())
				row(table, "ID", "NAME")
				for {
					project, err := it.Next(ctx)
					if err == iterator.Done {
						break
					}
					if err != nil {
						return err
					}
					row(table, project.ID, project.Name)
				}
				return table.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <id> [name]",
		Short: "create a project, named after its id unless a name is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if len(args) > 1 {
				name = args[1]
			}
			return r.connect(func(ctx context.Context, client *schedy.Client) error {
				project, err := client.CreateProject(ctx, args[0], name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created project %s\n", project.ID)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "remove a project and its experiments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.connect(func(ctx context.Context, client *schedy.Client) error {
				return client.DeleteProject(ctx, args[0])
			})
		},
	})

	return cmd
}
