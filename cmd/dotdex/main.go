package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotdex/dotdex/internal/app"
)

var (
	// Version is injected at build time
	Version = "dev"
	// Build is injected at build time
	Build = "unknown"
	// ProgramName is injected at build time
	ProgramName = "dotdex"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, Build, ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version, build, programName string, args []string) error {
	ctx := context.Background()
	params := app.DefaultRunParams()

	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Index and search the aliases, functions and exports in your dotfiles",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.SetVersionTemplate(`{{.Version}}
`)
	app.RegisterGlobalFlags(rootCmd.PersistentFlags())

	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Scan the configured dotfiles and reconcile the command index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rebuild, _ := cmd.Flags().GetBool("rebuild")
			return app.RunIndex(ctx, params, cmd.Flags(), rebuild)
		},
	}
	indexCmd.Flags().Bool("rebuild", false, "Drop all records, including customizations, and reindex from scratch")

	listCmd := &cobra.Command{
		Use:   "list [category]",
		Short: "List indexed commands grouped by category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryName := ""
			if len(args) == 1 {
				categoryName = args[0]
			}
			all, _ := cmd.Flags().GetBool("all")
			return app.RunList(ctx, params, cmd.Flags(), categoryName, all)
		},
	}
	listCmd.Flags().Bool("all", false, "Include hidden commands")

	searchCmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search indexed commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			byName, _ := cmd.Flags().GetBool("name")
			byCode, _ := cmd.Flags().GetBool("code")
			limit, _ := cmd.Flags().GetInt("limit")

			mode := app.SearchFullText
			switch {
			case byName:
				mode = app.SearchByName
			case byCode:
				mode = app.SearchByCode
			}
			return app.RunSearch(ctx, params, cmd.Flags(), args[0], mode, limit)
		},
	}
	searchCmd.Flags().Bool("name", false, "Regex search against command names only")
	searchCmd.Flags().Bool("code", false, "Regex search against command code only")
	searchCmd.Flags().Int("limit", 20, "Maximum number of full-text results")
	searchCmd.MarkFlagsMutuallyExclusive("name", "code")

	hideCmd := &cobra.Command{
		Use:   "hide <name>",
		Short: "Hide a command from listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunSetHidden(ctx, params, cmd.Flags(), args[0], true)
		},
	}

	unhideCmd := &cobra.Command{
		Use:   "unhide <name>",
		Short: "Unhide a previously hidden command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunSetHidden(ctx, params, cmd.Flags(), args[0], false)
		},
	}

	annotateCmd := &cobra.Command{
		Use:   "annotate <name>",
		Short: "Set a custom description or category that survives reindexing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var description, categoryName *string
			if cmd.Flags().Changed("description") {
				d, _ := cmd.Flags().GetString("description")
				description = &d
			}
			if cmd.Flags().Changed("category") {
				c, _ := cmd.Flags().GetString("category")
				categoryName = &c
			}
			return app.RunAnnotate(ctx, params, cmd.Flags(), args[0], description, categoryName)
		},
	}
	annotateCmd.Flags().StringP("description", "d", "", "Custom description")
	annotateCmd.Flags().StringP("category", "c", "", "Custom category name")

	explainCmd := &cobra.Command{
		Use:   "explain <name>",
		Short: "Show an indexed command, or look it up in external documentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunExplain(ctx, params, cmd.Flags(), args[0])
		},
	}

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the command index to MCP clients over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunMCP(ctx, params, cmd.Flags(), version)
		},
	}

	rootCmd.AddCommand(indexCmd, listCmd, searchCmd, hideCmd, unhideCmd, annotateCmd, explainCmd, mcpCmd)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}
