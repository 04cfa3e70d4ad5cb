package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/records"
	"github.com/roach88/elementq/internal/store"
)

// FieldGroupResult is the JSON payload of the fieldgroup subcommands.
type FieldGroupResult struct {
	Group  *records.FieldGroup `json:"group,omitempty"`
	Groups []ir.FieldGroup     `json:"groups,omitempty"`
	Fields []ir.Field          `json:"fields,omitempty"`
}

// NewFieldGroupCommand creates the fieldgroup command and its subcommands.
func NewFieldGroupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fieldgroup",
		Short: "Manage field groups",
		Long: `List, create and rename field groups.

Names are required, at most 255 characters and unique.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List field groups by name",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFieldGroups(rootOpts, cmd, listFieldGroups)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "create <name>",
		Short:         "Validate and create a field group",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFieldGroups(rootOpts, cmd, func(s *session, st *store.Store, cmd *cobra.Command) error {
				return saveFieldGroup(s, st, cmd, records.FieldGroup{Name: args[0]})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "rename <id> <name>",
		Short:         "Validate and rename a field group",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFieldGroups(rootOpts, cmd, func(s *session, st *store.Store, cmd *cobra.Command) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return s.fail(ExitCommandError, "invalid field group id", err)
				}
				return saveFieldGroup(s, st, cmd, records.FieldGroup{ID: id, Name: args[1]})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "fields <name>",
		Short:         "List the fields in a field group",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFieldGroups(rootOpts, cmd, func(s *session, st *store.Store, cmd *cobra.Command) error {
				return listGroupFields(s, st, cmd, args[0])
			})
		},
	})

	return cmd
}

func withFieldGroups(opts *RootOptions, cmd *cobra.Command, run func(*session, *store.Store, *cobra.Command) error) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(s.cfg.Database.Driver, s.cfg.Database.Path)
	if err != nil {
		return s.fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()
	return run(s, st, cmd)
}

func listFieldGroups(s *session, st *store.Store, cmd *cobra.Command) error {
	groups, err := st.FieldGroups(cmd.Context())
	if err != nil {
		return s.fail(ExitFailure, "failed to list field groups", err)
	}
	if s.out.Format == "json" {
		return s.out.Success(FieldGroupResult{Groups: groups})
	}
	for _, g := range groups {
		fmt.Fprintf(s.out.Writer, "%d\t%s\n", g.ID, records.NewFieldGroup(g))
	}
	return nil
}

func saveFieldGroup(s *session, st *store.Store, cmd *cobra.Command, g records.FieldGroup) error {
	saved, err := g.Save(cmd.Context(), st)
	if err != nil {
		var ve *records.ValidationError
		if errors.As(err, &ve) {
			_ = s.out.Error(ErrCodeValidation, ve.Error(), ve.Fields)
			return WrapExitError(ExitFailure, "field group is invalid", err)
		}
		if errors.Is(err, store.ErrNotFound) {
			return s.fail(ExitCommandError, "no such field group", err)
		}
		return s.fail(ExitFailure, "failed to save field group", err)
	}

	if s.out.Format == "json" {
		return s.out.Success(FieldGroupResult{Group: &saved})
	}
	fmt.Fprintf(s.out.Writer, "Saved field group %d %q\n", saved.ID, saved.String())
	return nil
}

func listGroupFields(s *session, st *store.Store, cmd *cobra.Command, name string) error {
	g, err := st.FieldGroupByName(cmd.Context(), name)
	if err != nil {
		return s.fail(ExitCommandError, "no such field group", err)
	}
	fields, err := records.NewFieldGroup(g).Fields(cmd.Context(), st)
	if err != nil {
		return s.fail(ExitFailure, "failed to list fields", err)
	}
	if s.out.Format == "json" {
		return s.out.Success(FieldGroupResult{Fields: fields})
	}
	for _, f := range fields {
		fmt.Fprintf(s.out.Writer, "%s\t%s\n", f.Handle, f.Name)
	}
	return nil
}
