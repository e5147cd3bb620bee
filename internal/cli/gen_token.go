package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schedyio/schedy/pkg/schedy"
)

const DefaultRoot = "https://api.schedy.io/"

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func (r *runner) genTokenCommand() *cobra.Command {
	var root, email, password string

	cmd := &cobra.Command{
		Use:   "gen-token",
		Short: "sign in with a password and save a new API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			var err error
			if email == "" {
				if email, err = prompt(in, cmd.OutOrStdout(), "Email"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt(in, cmd.OutOrStdout(), "Password"); err != nil {
					return err
				}
			}

			cfg, err := schedy.NewConfig(schedy.Config{
				Root:      root,
				Email:     email,
				Token:     password,
				TokenType: schedy.TokenTypePassword,
			})
			if err != nil {
				return err
			}

			path := r.opts.configPath
			if path == "" {
				if path, err = schedy.DefaultConfigPath(); err != nil {
					return err
				}
			}
			return r.run(cfg, func(ctx context.Context, client *schedy.Client) error {
				generated, err := client.GenerateToken(ctx)
				if err != nil {
					return err
				}
				if err := schedy.SaveConfig(r.fs, path, generated); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", path)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&root, "root", DefaultRoot, "root URL of the service")
	flags.StringVar(&email, "email", "", "account email, prompted when empty")
	flags.StringVar(&password, "password", "", "account password, prompted when empty")
	return cmd
}
