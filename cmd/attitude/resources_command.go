package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flohusson/attitude-emoi/internal/di"
)

func newResourcesCommand(ctx *commandContext) *cobra.Command {
	resourcesCmd := &cobra.Command{
		Use:   "resources",
		Short: "Inspect recommended resources",
	}
	resourcesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withContainer(cmd.Context(), cmd.ErrOrStderr(), func(c *di.Container) error {
				list, err := c.Repositories().Resources.List(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(list))
				for _, entry := range list {
					meta := entry.Meta
					rows = append(rows, []string{meta.Slug, meta.Title, meta.Author, string(meta.Type)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Slug", "Title", "Author", "Type"}, rows, nil))
				return nil
			})
		},
	})
	return resourcesCmd
}
