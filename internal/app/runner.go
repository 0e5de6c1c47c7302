package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"

	"github.com/dotdex/dotdex/internal/category"
	"github.com/dotdex/dotdex/internal/config"
	"github.com/dotdex/dotdex/internal/domain"
	"github.com/dotdex/dotdex/internal/explain"
	"github.com/dotdex/dotdex/internal/index"
	mcputil "github.com/dotdex/dotdex/internal/mcp"
	"github.com/dotdex/dotdex/internal/store"
	"github.com/dotdex/dotdex/internal/view"
)

// RunParams contains dependencies for the subcommand runners
type RunParams struct {
	LoadSettings     func(*pflag.FlagSet) (*config.Settings, error)
	ValidateSettings func(*config.Settings) error
	OpenStore        func(path string) (*store.Store, error)
	Explain          *explain.Client
	Stdout           io.Writer
	// CustomIOTransport is an optional MCP transport for testing.
	CustomIOTransport mcp.Transport
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:     config.LoadSettingsWithFlags,
		ValidateSettings: config.ValidateSettings,
		OpenStore:        store.Open,
		Explain:          explain.NewClient(),
		Stdout:           os.Stdout,
	}
}

// setup loads and validates settings, configures logging, and opens the store.
func setup(params RunParams, flags *pflag.FlagSet) (*config.Settings, *store.Store, error) {
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := params.ValidateSettings(settings); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Logging always goes to stderr so command output stays pipeable.
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	slog.SetDefault(slog.New(handler))

	st, err := params.OpenStore(settings.DBPath())
	if err != nil {
		return nil, nil, err
	}
	return settings, st, nil
}

// RunIndex executes one full indexing run and prints the summary.
func RunIndex(ctx context.Context, params RunParams, flags *pflag.FlagSet, rebuild bool) error {
	settings, st, err := setup(params, flags)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	summary, err := index.NewService(settings, st).Run(ctx, rebuild)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(params.Stdout, view.Summary(summary))
	return err
}

// RunList prints indexed commands, optionally restricted to one category.
func RunList(ctx context.Context, params RunParams, flags *pflag.FlagSet, categoryName string, includeHidden bool) error {
	_, st, err := setup(params, flags)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	commands, err := st.List(ctx, categoryName, includeHidden)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(params.Stdout, view.CommandList(commands))
	return err
}

// SearchMode selects how RunSearch matches the input term.
type SearchMode int

const (
	SearchFullText SearchMode = iota
	SearchByName
	SearchByCode
)

// RunSearch searches the index: full-text through Bleve by default, or by
// regex against names/code straight from the store.
func RunSearch(ctx context.Context, params RunParams, flags *pflag.FlagSet, term string, mode SearchMode, limit int) error {
	settings, st, err := setup(params, flags)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if mode == SearchFullText {
		idx, err := index.OpenSearchIndex(settings.SearchIndexPath())
		if err != nil {
			return err
		}
		defer func() { _ = idx.Close() }()

		hits, err := index.Search(idx, index.SearchRequest{Query: term, Limit: limit})
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(params.Stdout, view.SearchResults(hits, term))
		return err
	}

	re, err := category.CompilePredicate(term, settings.CaseSensitive)
	if err != nil {
		return fmt.Errorf("bad search regex %q: %w", term, err)
	}

	commands, err := st.List(ctx, "", false)
	if err != nil {
		return err
	}

	var matched []domain.Command
	for _, c := range commands {
		text := c.Name
		if mode == SearchByCode {
			text = c.Code
		}
		if re.MatchString(text) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Key().String() < matched[j].Key().String() })

	_, err = fmt.Fprint(params.Stdout, view.CommandList(matched))
	return err
}

// RunSetHidden hides or unhides every command with the given name.
func RunSetHidden(ctx context.Context, params RunParams, flags *pflag.FlagSet, name string, hidden bool) error {
	_, st, err := setup(params, flags)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	n, err := st.SetHidden(ctx, name, hidden)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no indexed command named %q", name)
	}

	verb := "Hid"
	if !hidden {
		verb = "Unhid"
	}
	_, err = fmt.Fprintf(params.Stdout, "%s %d command(s) named %q\n", verb, n, name)
	return err
}

// RunAnnotate sets a custom description and/or category on a command. The
// custom flags make the values survive reindexing.
func RunAnnotate(ctx context.Context, params RunParams, flags *pflag.FlagSet, name string, description, categoryName *string) error {
	_, st, err := setup(params, flags)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if description == nil && categoryName == nil {
		return fmt.Errorf("nothing to annotate: pass --description and/or --category")
	}

	n, err := st.Annotate(ctx, name, description, categoryName)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no indexed command named %q", name)
	}

	_, err = fmt.Fprintf(params.Stdout, "Annotated %d command(s) named %q\n", n, name)
	return err
}

// RunExplain shows the indexed command, falling back to the external
// documentation lookup when nothing is indexed under that name.
func RunExplain(ctx context.Context, params RunParams, flags *pflag.FlagSet, name string) error {
	_, st, err := setup(params, flags)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	commands, err := st.FindByName(ctx, name)
	if err != nil {
		return err
	}

	if len(commands) > 0 {
		for _, c := range commands {
			if _, err := fmt.Fprint(params.Stdout, view.CommandDetail(c)); err != nil {
				return err
			}
		}
		return nil
	}

	if params.Explain == nil {
		return fmt.Errorf("no indexed command named %q", name)
	}

	text, found, err := params.Explain.Lookup(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no indexed command or external documentation found for %q", name)
	}

	_, err = fmt.Fprintln(params.Stdout, text)
	return err
}

// RunMCP serves the MCP tools over stdio.
func RunMCP(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	settings, st, err := setup(params, flags)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	slog.Info("Starting dotdex MCP server", "version", version)
	config.Log(settings)

	server := mcputil.CreateServer(mcputil.ServerConfig{
		Name:     "dotdex",
		Version:  version,
		Settings: settings,
		Store:    st,
		Explain:  params.Explain,
	})

	transport := params.CustomIOTransport
	if transport == nil {
		transport = &mcp.StdioTransport{}
	}
	return server.Run(ctx, transport)
}
