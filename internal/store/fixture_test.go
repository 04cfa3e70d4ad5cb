package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFixture_RejectsUnknownKeys(t *testing.T) {
	_, err := ParseFixture(strings.NewReader("volumes:\n  - {handle: photos, colour: red}\n"))
	assert.ErrorContains(t, err, "colour")
}

func TestParseFixture_Empty(t *testing.T) {
	f, err := ParseFixture(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Assets)
}

func TestLoadFixtureFile(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, DriverMattn)

	f, err := s.LoadFixtureFile(ctx, filepath.Join("testdata", "assets.yaml"))
	require.NoError(t, err)
	assert.Len(t, f.Assets, 2)

	var count int
	require.NoError(t, s.db.Get(&count, `SELECT COUNT(*) FROM assets`))
	assert.Equal(t, 2, count)

	v, err := s.VolumeByHandle(ctx, "photos")
	require.NoError(t, err)
	assert.Equal(t, "uid-0001", v.UID)

	placed, err := s.FieldLayoutFields(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, placed, 1)
}

func TestLoadFixtureFile_Missing(t *testing.T) {
	s := createTestStore(t, DriverMattn)
	_, err := s.LoadFixtureFile(context.Background(), filepath.Join("testdata", "nope.yaml"))
	assert.ErrorContains(t, err, "open fixture")
}

func TestLoadFixture_AllOrNothing(t *testing.T) {
	s := createTestStore(t, DriverMattn)

	f, err := ParseFixture(strings.NewReader(folderTree + `
assets:
  - {id: 10, volume: photos, folder: 1, filename: a.jpg, kind: image}
  - {id: 11, volume: videos, folder: 1, filename: b.mp4, kind: video}
`))
	require.NoError(t, err)

	err = s.LoadFixture(context.Background(), f)
	assert.ErrorContains(t, err, `unknown volume "videos"`)

	var count int
	require.NoError(t, s.db.Get(&count, `SELECT COUNT(*) FROM volumes`))
	assert.Zero(t, count, "the transaction was rolled back")
}

func TestLoadFixture_UnknownLayoutField(t *testing.T) {
	s := createTestStore(t, DriverMattn)

	f, err := ParseFixture(strings.NewReader(`
fieldLayouts:
  - id: 1
    type: asset
    tabs:
      - name: Content
        fields: [{handle: ghost}]
`))
	require.NoError(t, err)
	assert.ErrorContains(t, s.LoadFixture(context.Background(), f), `unknown field "ghost"`)
}
