package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/elementq/internal/store"
)

// SeedResult summarizes a loaded fixture.
type SeedResult struct {
	Fixture          string `json:"fixture"`
	Volumes          int    `json:"volumes"`
	Folders          int    `json:"folders"`
	Assets           int    `json:"assets"`
	FieldGroups      int    `json:"field_groups"`
	FieldLayouts     int    `json:"field_layouts"`
	Transforms       int    `json:"transforms"`
	TransformIndexes int    `json:"transform_indexes"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load a YAML fixture into the database",
		Long: `Create the database if needed and load volumes, folders, assets,
field layouts and transforms from a YAML fixture.

The fixture is loaded in one transaction: either every row is written or
none is.

Example:
  elementq seed --db ./content.db ./fixtures/assets.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSeed(opts *RootOptions, path string, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}

	st, err := store.Open(s.cfg.Database.Driver, s.cfg.Database.Path)
	if err != nil {
		return s.fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	s.out.VerboseLog("Seeding %s from %s", s.cfg.Database.Path, path)
	f, err := st.LoadFixtureFile(cmd.Context(), path)
	if err != nil {
		return s.fail(ExitCommandError, "failed to load fixture", err)
	}
	s.logger.Info("fixture loaded", "path", path, "assets", len(f.Assets))

	result := SeedResult{
		Fixture:          path,
		Volumes:          len(f.Volumes),
		Folders:          len(f.Folders),
		Assets:           len(f.Assets),
		FieldGroups:      len(f.FieldGroups),
		FieldLayouts:     len(f.FieldLayouts),
		Transforms:       len(f.Transforms),
		TransformIndexes: len(f.TransformIndexes),
	}
	if s.out.Format == "json" {
		return s.out.Success(result)
	}
	fmt.Fprintf(s.out.Writer, "Seeded %d volume(s), %d folder(s), %d asset(s), %d field group(s), %d layout(s), %d transform(s)\n",
		result.Volumes, result.Folders, result.Assets, result.FieldGroups, result.FieldLayouts, result.Transforms)
	return nil
}
