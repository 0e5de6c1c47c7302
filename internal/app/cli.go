package app

import "github.com/spf13/pflag"

// RegisterGlobalFlags registers the configuration override flags shared by
// every subcommand
func RegisterGlobalFlags(flags *pflag.FlagSet) {
	flags.StringSliceP("file-globs", "g", nil, "File globs to index (comma-separated)")
	flags.String("exclude-regex", "", "Regex of file paths to exclude from indexing")
	flags.String("ignore-regex", "", "Regex of command names to ignore")
	flags.String("comment-placement", "", "Comment placement: best, above or inline")
	flags.Bool("case-sensitive", false, "Case-sensitive regex matching")
	flags.String("uncategorized-name", "", "Category name for unmatched commands")
	flags.String("deletion-policy", "", "Deletion policy: delete or tombstone")
	flags.IntP("workers", "w", 0, "Parallel file parse workers")
	flags.String("data-dir", "", "Directory for the command store and search index")
}
