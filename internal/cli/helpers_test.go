package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/elementq/internal/config"
	"github.com/roach88/elementq/internal/store"
	"github.com/roach88/elementq/internal/testutil"
)

// isolate keeps the user's config files out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvVar, "")
}

// seededDB writes the shared asset fixture to a new database file.
func seededDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content.db")
	st, err := store.Open(store.DriverMattn, path)
	require.NoError(t, err)
	f, err := store.ParseFixture(strings.NewReader(testutil.AssetFixture))
	require.NoError(t, err)
	require.NoError(t, st.LoadFixture(context.Background(), f))
	require.NoError(t, st.Close())
	return path
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// execute runs the root command and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolate(t)
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// execSQL runs stmt directly against the database file at path.
func execSQL(t *testing.T, path, stmt string) {
	t.Helper()
	st, err := store.Open(store.DriverMattn, path)
	require.NoError(t, err)
	defer st.Close()
	_, err = st.DB().Exec(stmt)
	require.NoError(t, err)
}
