package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flohusson/attitude-emoi/internal/di"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "render <slug>",
		Short: "Print the HTML of an article, drafts included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withContainer(cmd.Context(), cmd.ErrOrStderr(), func(c *di.Container) error {
				entry, err := c.Repositories().Articles.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				article, err := c.Renderer().RenderArticle(cmd.Context(), entry)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), article.HTML)
				return nil
			})
		},
	}
}
