package bddlabels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

func TestWritePreviews(t *testing.T) {
	cfg, db := buildFixture(t)
	dir := filepath.Join(t.TempDir(), "preview")

	db = append(db, Sample{Name: "broken", Image: filepath.Join(dir, "missing.jpg")})
	require.NoError(t, WritePreviews(logs.NewTestingLog(t), dir, db, cfg.ClassNames(), 0))

	for _, name := range []string{"a", "b"} {
		size, format, err := decodeImageSize(filepath.Join(dir, name+".png"))
		require.NoError(t, err)
		require.Equal(t, "png", format)
		require.Equal(t, testImageSize, size)
	}
	_, err := os.Stat(filepath.Join(dir, "broken.png"))
	require.True(t, os.IsNotExist(err))
}

func TestWritePreviewsLimit(t *testing.T) {
	cfg, db := buildFixture(t)
	dir := filepath.Join(t.TempDir(), "preview")

	require.NoError(t, WritePreviews(logs.NewTestingLog(t), dir, db, cfg.ClassNames(), 1))
	files, err := filesByExtInDir(dir, ".png")
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.png")}, files)
}

func TestPreviewColor(t *testing.T) {
	require.Equal(t, previewPalette[0], previewColor(0))
	require.Equal(t, previewPalette[0], previewColor(len(previewPalette)))
	require.Equal(t, previewPalette[1], previewColor(-1))
}
