package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/elementq/internal/store"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	queryFlags
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain [criterion=value ...]",
		Short: "Show the SQL an asset query would run",
		Long: `Compile an asset query without executing it.

Prints the parameterized SQL, its bound parameters, one condition per
criterion and the criteria fingerprint. Volume handles and folder trees
are still resolved against the database.

Example:
  elementq explain "kind=image, video" "width=>= 100"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Saved, "saved", "", "apply a saved query by name")
	cmd.Flags().StringVar(&opts.Queries, "queries", "", "saved query file, YAML or CUE (overrides config)")

	return cmd
}

func runExplain(opts *ExplainOptions, args []string, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
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

	exp, err := q.Explain(cmd.Context())
	if err != nil {
		return s.fail(ExitFailure, "explain failed", err)
	}

	if s.out.Format == "json" {
		return s.out.Success(exp)
	}

	w := s.out.Writer
	fmt.Fprintf(w, "element type: %s\n", exp.ElementType)
	fmt.Fprintf(w, "fingerprint:  %s\n", exp.Fingerprint)
	if exp.ShortCircuit {
		fmt.Fprintln(w, "result:       empty, storage is not queried")
	}
	if len(exp.Conditions) > 0 {
		fmt.Fprintln(w, "conditions:")
		for _, c := range exp.Conditions {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}
	if exp.SQL != "" {
		fmt.Fprintf(w, "sql:\n  %s\n", exp.SQL)
		params := make([]string, len(exp.Params))
		for i, p := range exp.Params {
			params[i] = fmt.Sprintf("%#v", p)
		}
		fmt.Fprintf(w, "params: [%s]\n", strings.Join(params, ", "))
	}
	return nil
}
