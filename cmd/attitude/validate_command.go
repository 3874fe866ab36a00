package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flohusson/attitude-emoi/internal/di"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every stored record can be read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withContainer(cmd.Context(), cmd.ErrOrStderr(), func(c *di.Container) error {
				problems, err := c.Scanner().Scan(cmd.Context())
				if err != nil {
					return err
				}
				if len(problems) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "all records are readable")
					return nil
				}

				keys := make([]string, 0, len(problems))
				for key := range problems {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				rows := make([][]string, 0, len(keys))
				for _, key := range keys {
					rows = append(rows, []string{key, problems[key].Error()})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Record", "Problem"}, rows, nil))
				return fmt.Errorf("%d unreadable records", len(problems))
			})
		},
	}
}
