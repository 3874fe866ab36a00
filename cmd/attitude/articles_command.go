package main

import (
	"fmt"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	"github.com/flohusson/attitude-emoi/content"
	articlecmd "github.com/flohusson/attitude-emoi/internal/commands/articles"
	"github.com/flohusson/attitude-emoi/internal/di"
)

func newArticlesCommand(ctx *commandContext) *cobra.Command {
	articlesCmd := &cobra.Command{
		Use:   "articles",
		Short: "List and manage blog articles",
	}
	articlesCmd.AddCommand(newArticlesListCommand(ctx))
	articlesCmd.AddCommand(newArticlesTrashCommand(ctx))
	articlesCmd.AddCommand(newArticlesRestoreCommand(ctx))
	articlesCmd.AddCommand(newArticlesPurgeCommand(ctx))
	return articlesCmd
}

func newArticlesListCommand(ctx *commandContext) *cobra.Command {
	var includeDrafts bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withContainer(cmd.Context(), cmd.ErrOrStderr(), func(c *di.Container) error {
				list, err := c.Repositories().Articles.List(cmd.Context(), content.ListOptions{IncludeDrafts: includeDrafts})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), articleTable(list))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&includeDrafts, "drafts", false, "Include draft articles")
	return cmd
}

func newArticlesTrashCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "trash",
		Short: "List soft-deleted articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withContainer(cmd.Context(), cmd.ErrOrStderr(), func(c *di.Container) error {
				list, err := c.Repositories().Articles.ListTrash(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), articleTable(list))
				return nil
			})
		},
	}
}

func newArticlesRestoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <slug>",
		Short: "Move an article out of the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withContainer(cmd.Context(), cmd.ErrOrStderr(), func(*di.Container) error {
				if err := dispatcher.Dispatch(cmd.Context(), articlecmd.RestoreArticleCommand{Slug: args[0]}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", args[0])
				return nil
			})
		},
	}
}

func newArticlesPurgeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <slug>",
		Short: "Delete a trashed article for good",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withContainer(cmd.Context(), cmd.ErrOrStderr(), func(*di.Container) error {
				if err := dispatcher.Dispatch(cmd.Context(), articlecmd.PermanentDeleteArticleCommand{Slug: args[0]}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", args[0])
				return nil
			})
		},
	}
}

func articleTable(list []content.Entry[content.Article]) string {
	rows := make([][]string, 0, len(list))
	for _, entry := range list {
		meta := entry.Meta
		rows = append(rows, []string{
			meta.Slug,
			meta.Title,
			meta.Category,
			string(meta.Status),
			dateColumn(meta.Date),
		})
	}
	return renderTable([]string{"Slug", "Title", "Category", "Status", "Date"}, rows, nil)
}
