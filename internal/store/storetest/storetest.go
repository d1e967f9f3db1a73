// Package storetest provides an in-memory app store for tests.
package storetest

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/approuter/internal/store"
	"github.com/leapstack-labs/approuter/internal/testutil"
)

// New opens a migrated in-memory SQLite store that is closed when the test ends.
func New(t testing.TB) *store.Store {
	t.Helper()

	ctx := context.Background()
	s, err := store.Open(ctx, store.DriverSQLite, ":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(ctx))
	return s
}

// CreateApp inserts app and returns its id.
func CreateApp(t testing.TB, s *store.Store, app store.NewApp) int64 {
	t.Helper()

	id, err := s.CreateApp(context.Background(), app)
	require.NoError(t, err)
	return id
}

// SolidPNG encodes a w x h PNG filled with c.
func SolidPNG(t testing.TB, w, h int, c color.Color) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// Colors used by fixtures so tests can tell icon sources apart.
var (
	Red   = color.NRGBA{R: 0xff, A: 0xff}
	Green = color.NRGBA{G: 0xff, A: 0xff}
	Blue  = color.NRGBA{B: 0xff, A: 0xff}
)
