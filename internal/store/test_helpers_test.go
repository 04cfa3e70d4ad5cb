package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/elementq/internal/ir"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

var drivers = []string{DriverMattn, DriverModernc}

// createTestStore opens a fresh store in a temp dir with a fixed clock and
// sequential UIDs.
func createTestStore(t *testing.T, driver string) *Store {
	t.Helper()
	uids := 0
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(driver, path,
		WithClock(func() time.Time { return testNow }),
		WithUIDGenerator(func() string {
			uids++
			return fmt.Sprintf("uid-%04d", uids)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// loadTestFixture parses and loads an inline YAML fixture.
func loadTestFixture(t *testing.T, s *Store, doc string) {
	t.Helper()
	f, err := ParseFixture(strings.NewReader(doc))
	require.NoError(t, err)
	require.NoError(t, s.LoadFixture(context.Background(), f))
}

// folderTree is volume "photos" with folders 1 -> {2, 3}, 2 -> {4} and a
// second root 5 in volume "docs".
const folderTree = `
volumes:
  - {id: 1, handle: photos, name: Photos}
  - {id: 2, handle: docs, name: Documents}
folders:
  - {id: 1, volume: photos, name: Photos}
  - {id: 2, parent: 1, volume: photos, name: Trips, path: trips/}
  - {id: 3, parent: 1, volume: photos, name: Pets, path: pets/}
  - {id: 4, parent: 2, volume: photos, name: Iceland, path: trips/iceland/}
  - {id: 5, volume: docs, name: Documents}
`

func int64p(n int64) *int64 { return &n }

func newAsset(volumeID, folderID int64, filename, kind string) *ir.Asset {
	return &ir.Asset{
		Element:  ir.Element{Enabled: true},
		VolumeID: volumeID,
		FolderID: folderID,
		Filename: filename,
		Kind:     kind,
	}
}
