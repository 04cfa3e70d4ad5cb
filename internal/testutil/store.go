package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/elementq/internal/store"
)

// AssetFixture is the shared asset library used across package tests.
//
// Folders: 1 "Photos" -> {2 "Trips", 3 "Pets"}, 2 -> {4 "Iceland"},
// and 5 "Documents" in the docs volume.
//
// Assets 1-5 are the kind/width scenario: three 200px images, a 50px
// video and a 300px document.
const AssetFixture = `
volumes:
  - {id: 1, handle: photos, name: Photos}
  - {id: 2, handle: docs, name: Documents}
  - {id: 3, handle: archive, name: Archive}
folders:
  - {id: 1, volume: photos, name: Photos}
  - {id: 2, parent: 1, volume: photos, name: Trips, path: trips/}
  - {id: 3, parent: 1, volume: photos, name: Pets, path: pets/}
  - {id: 4, parent: 2, volume: photos, name: Iceland, path: trips/iceland/}
  - {id: 5, volume: docs, name: Documents}
assets:
  - {id: 1, volume: photos, folder: 1, filename: sunrise.jpg, kind: image, width: 200, height: 150, size: 52000, dateCreated: 2024-01-05T08:00:00Z}
  - {id: 2, volume: photos, folder: 2, filename: glacier.jpg, kind: image, width: 200, height: 120, size: 61000, dateCreated: 2024-02-10T10:00:00Z}
  - {id: 3, volume: photos, folder: 4, filename: geyser.jpg, kind: image, width: 200, height: 100, size: 48000, dateCreated: 2024-02-11T10:00:00Z}
  - {id: 4, volume: photos, folder: 3, filename: puppy.mp4, kind: video, width: 50, height: 40, size: 900000, dateCreated: 2024-03-01T09:00:00Z}
  - {id: 5, volume: docs, folder: 5, filename: report.pdf, kind: document, width: 300, size: 12000, dateCreated: 2024-03-02T09:00:00Z}
transforms:
  - {handle: thumb, name: Thumbnail, width: 100, height: 100}
  - {handle: hero, name: Hero, mode: fit, width: 1600}
transformIndexes:
  - {asset: 1, transform: thumb, filename: sunrise_thumb.jpg, format: jpg, fileExists: true}
  - {asset: 2, transform: thumb, filename: glacier_thumb.jpg, format: jpg, fileExists: true}
  - {asset: 2, transform: hero, filename: glacier_hero.jpg, format: jpg}
`

// OpenStore opens an empty store in a temp dir with a deterministic clock
// and UIDs. The store is closed when the test ends.
func OpenStore(t *testing.T, driver string) *store.Store {
	t.Helper()
	clock := NewDeterministicClock()
	uids := &SequentialUIDs{}
	s, err := store.Open(driver, filepath.Join(t.TempDir(), "test.db"),
		store.WithClock(clock.Now),
		store.WithUIDGenerator(uids.Generate),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// SeededStore opens a store loaded with AssetFixture.
func SeededStore(t *testing.T, driver string) *store.Store {
	t.Helper()
	s := OpenStore(t, driver)
	f, err := store.ParseFixture(strings.NewReader(AssetFixture))
	require.NoError(t, err)
	require.NoError(t, s.LoadFixture(context.Background(), f))
	return s
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
