package bddlabels

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Label files of the test dataset, keyed by sample name.
var fixtureLabels = map[string]string{
	"a": `{
  "name": "a",
  "attributes": {"weather": "clear", "scene": "city street", "timeofday": "daytime"},
  "frames": [{
    "timestamp": 10000,
    "objects": [
      {"id": 0, "category": "car", "attributes": {"occluded": false, "truncated": false},
       "box2d": {"x1": 100, "y1": 200, "x2": 300, "y2": 400}},
      {"id": 1, "category": "traffic light", "attributes": {"trafficLightColor": "green"},
       "box2d": {"x1": 640, "y1": 0, "x2": 660, "y2": 40}},
      {"id": 2, "category": "lane", "attributes": {"laneDirection": "parallel"},
       "poly2d": [{"vertices": [[0, 700], [300, 500]], "types": "LL", "closed": false}]},
      {"id": 3, "category": "person", "box2d": {"x1": 0, "y1": 0, "x2": 128, "y2": 72}}
    ]
  }]
}`,
	"b": `{
  "name": "b",
  "frames": [{
    "objects": [
      {"id": 0, "category": "truck", "box2d": {"x1": 0, "y1": 0, "x2": 1280, "y2": 720}},
      {"id": 1, "category": "train", "box2d": {"x1": 640, "y1": 360, "x2": 1280, "y2": 720}},
      {"id": 2, "category": "drivable area",
       "poly2d": [{"vertices": [[0, 0], [10, 0], [10, 10]], "types": "LLL", "closed": true}]}
    ]
  }]
}`,
	"empty": `{"name": "empty", "frames": []}`,
}

// testImageSize is the size of the images written by writeFixture.
var testImageSize = ImageSize{Width: 64, Height: 36}

// writeFixture creates a dataset with samples a, b, empty (no frames) and nolabel (no label file)
// in the train split below root, and returns its configuration.
func writeFixture(t *testing.T, root string) Config {
	cfg := DefaultConfig(root)
	split := cfg.TrainSet

	for _, dir := range []string{cfg.DataRoot, cfg.LabelRoot, cfg.MaskRoot, cfg.LaneRoot} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, split), 0755))
	}

	for _, name := range []string{"a", "b", "empty", "nolabel"} {
		writePNG(t, filepath.Join(cfg.MaskRoot, split, name+".png"), testImageSize)
		writePNG(t, filepath.Join(cfg.LaneRoot, split, name+".png"), testImageSize)
		writeJPEG(t, filepath.Join(cfg.DataRoot, split, name+".jpg"), testImageSize)
		if text, ok := fixtureLabels[name]; ok {
			path := filepath.Join(cfg.LabelRoot, split, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(text), 0644))
		}
	}

	return cfg
}

func testImage(size ImageSize) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), 0, 255})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, size ImageSize) {
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, testImage(size)))
}

func writeJPEG(t *testing.T, path string, size ImageSize) {
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, testImage(size), nil))
}

// sampleByName returns the sample called name, failing the test if it is missing.
func sampleByName(t *testing.T, db Database, name string) Sample {
	for _, s := range db {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("sample %q not found", name)
	return Sample{}
}
