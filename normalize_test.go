package bddlabels

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeBox(t *testing.T) {
	size := ImageSize{Width: 200, Height: 100}
	l := NormalizeBox(4, size, 20, 10, 60, 50)
	row := l.Row()
	for i, want := range []float64{4, 0.2, 0.3, 0.2, 0.4} {
		require.InDelta(t, want, row[i], 1e-12)
	}
	require.Equal(t, 4, l.Class)

	c := l.Denormalize(size)
	for i, want := range []float64{20, 10, 60, 50} {
		require.InDelta(t, want, c[i], 1e-9)
	}
}

func TestNormalizeBoxNoClamp(t *testing.T) {
	// Boxes extending past the image and inverted boxes are converted as they are.
	l := NormalizeBox(0, ImageSize{Width: 100, Height: 100}, -50, 80, 150, 120)
	require.InDelta(t, 0.5, l.CenterX, 1e-12)
	require.InDelta(t, 2.0, l.Width, 1e-12)
	require.InDelta(t, 1.0, l.CenterY, 1e-12)

	l = NormalizeBox(0, ImageSize{Width: 100, Height: 100}, 30, 30, 10, 10)
	require.InDelta(t, -0.2, l.Width, 1e-12)
	require.InDelta(t, -0.2, l.Height, 1e-12)
}

func TestImageSize(t *testing.T) {
	require.True(t, ImageSize{Width: 1, Height: 1}.Valid())
	require.False(t, ImageSize{Width: 0, Height: 1}.Valid())
	require.False(t, ImageSize{Width: 5, Height: -1}.Valid())
	require.Equal(t, "1280x720", ImageSize{Width: 1280, Height: 720}.String())
}
