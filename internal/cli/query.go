package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/store"
)

// Query result modes.
const (
	ModeAll   = "all"
	ModeOne   = "one"
	ModeIDs   = "ids"
	ModeCount = "count"
	ModeRows  = "rows"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	queryFlags
	Mode string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [criterion=value ...]",
		Short: "Run an asset query",
		Long: `Run an asset query and print the result.

Each argument sets one criterion. Values use the param grammar:
comparison prefixes, comma lists with a leading "and"/"or", wildcards
and date words.

Example:
  elementq query kind=image "width=>= 100" orderBy="width desc"
  elementq query volume=photos folderId=1 includeSubfolders=true --mode ids
  elementq query --saved large-images --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", ModeAll, "result mode (all|one|ids|count|rows)")
	cmd.Flags().StringVar(&opts.Saved, "saved", "", "apply a saved query by name")
	cmd.Flags().StringVar(&opts.Queries, "queries", "", "saved query file, YAML or CUE (overrides config)")

	return cmd
}

func runQuery(opts *QueryOptions, args []string, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	switch opts.Mode {
	case ModeAll, ModeOne, ModeIDs, ModeCount, ModeRows:
	default:
		return s.fail(ExitCommandError, "invalid mode", fmt.Errorf("%q is not one of all, one, ids, count, rows", opts.Mode))
	}

	st, err := store.Open(s.cfg.Database.Driver, s.cfg.Database.Path)
	if err != nil {
		return s.fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	q, err := s.newAssetQuery(st, opts.queryFlags, args)
	if err != nil {
		return s.fail(ExitCommandError, "invalid query", err)
	}

	ctx := cmd.Context()
	var data any
	switch opts.Mode {
	case ModeAll:
		data, err = q.All(ctx)
	case ModeOne:
		data, err = q.One(ctx)
	case ModeIDs:
		data, err = q.IDs(ctx)
	case ModeCount:
		data, err = q.Count(ctx)
	case ModeRows:
		data, err = q.Rows(ctx)
	}
	if err != nil {
		return s.fail(ExitFailure, "query failed", err)
	}

	if s.out.Format == "json" {
		return s.out.Success(data)
	}
	return writeQueryText(s.out.Writer, data)
}

func writeQueryText(w io.Writer, data any) error {
	switch v := data.(type) {
	case []*ir.Asset:
		writeAssetTable(w, v)
		fmt.Fprintf(w, "%d asset(s)\n", len(v))
	case *ir.Asset:
		if v == nil {
			fmt.Fprintln(w, "no asset")
			return nil
		}
		writeAssetTable(w, []*ir.Asset{v})
	case []int64:
		for _, id := range v {
			fmt.Fprintln(w, id)
		}
	case int64:
		fmt.Fprintln(w, v)
	case []map[string]any:
		for _, row := range v {
			fmt.Fprintf(w, "%v\n", row)
		}
		fmt.Fprintf(w, "%d row(s)\n", len(v))
	}
	return nil
}

func writeAssetTable(w io.Writer, assets []*ir.Asset) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tKIND\tSIZE\tDIMENSIONS\tTRANSFORMS")
	for _, a := range assets {
		fmt.Fprintf(tw, "%d\t%s%s\t%s\t%s\t%s\t%d\n",
			a.ID, a.FolderPath, a.Filename, a.Kind, size(a.Size), dimensions(a), len(a.Transforms))
	}
	tw.Flush()
}

func size(n *int64) string {
	if n == nil {
		return "-"
	}
	return humanize.Bytes(uint64(*n))
}

func dimensions(a *ir.Asset) string {
	switch {
	case a.Width != nil && a.Height != nil:
		return fmt.Sprintf("%dx%d", *a.Width, *a.Height)
	case a.Width != nil:
		return fmt.Sprintf("%dx?", *a.Width)
	default:
		return "-"
	}
}
