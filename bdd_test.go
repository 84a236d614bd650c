package bddlabels

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T, name string) BDDAnnotatedFile {
	var f BDDAnnotatedFile
	require.NoError(t, json.Unmarshal([]byte(fixtureLabels[name]), &f))
	return f
}

func TestFilterObjects(t *testing.T) {
	objects := parseFixture(t, "a").Frames[0].Objects

	remain := FilterObjects(objects, false)
	require.Len(t, remain, 3)
	require.Equal(t, "car", remain[0].Category)
	require.Equal(t, "traffic light", remain[1].Category)
	require.Equal(t, "person", remain[2].Category)

	remain = FilterObjects(objects, true)
	require.Len(t, remain, 1)
	require.Equal(t, "car", remain[0].Category)
}

func TestFrameLabels(t *testing.T) {
	size := ImageSize{Width: 1280, Height: 720}
	labels := FrameLabels(parseFixture(t, "a").Frames[0].Objects, size, false)
	require.Len(t, labels, 3)

	car := labels[0]
	require.Equal(t, 2, car.Class)
	require.InDelta(t, 200.0/1280, car.CenterX, 1e-12)
	require.InDelta(t, 300.0/720, car.CenterY, 1e-12)
	require.InDelta(t, 200.0/1280, car.Width, 1e-12)
	require.InDelta(t, 200.0/720, car.Height, 1e-12)

	require.Equal(t, 7, labels[1].Class) // tl_green
	require.Equal(t, 0, labels[2].Class) // person
	require.InDelta(t, 0.1, labels[2].Width, 1e-12)
	require.InDelta(t, 0.1, labels[2].Height, 1e-12)
}

func TestFrameLabelsMerged(t *testing.T) {
	size := ImageSize{Width: 1280, Height: 720}
	labels := FrameLabels(parseFixture(t, "b").Frames[0].Objects, size, true)
	require.Len(t, labels, 2)
	for _, l := range labels {
		require.Equal(t, 0, l.Class)
	}
	row := labels[0].Row()
	for i, want := range []float64{0, 0.5, 0.5, 1, 1} {
		require.InDelta(t, want, row[i], 1e-12)
	}
}

func TestFrameLabelsDropsUnknownCategories(t *testing.T) {
	objects := []BDDObject{
		{Category: "trailer", Box2D: &BDDBox2D{X1: 0, Y1: 0, X2: 10, Y2: 10}},
		{Category: "bus", Box2D: &BDDBox2D{X1: 0, Y1: 0, X2: 10, Y2: 10}},
		{Category: TrafficLight, Attributes: map[string]interface{}{TrafficLightColor: "blue"},
			Box2D: &BDDBox2D{X1: 0, Y1: 0, X2: 10, Y2: 10}},
	}
	require.Len(t, FilterObjects(objects, false), 3)
	labels := FrameLabels(objects, ImageSize{Width: 10, Height: 10}, false)
	require.Len(t, labels, 1)
	require.Equal(t, 3, labels[0].Class)
}

func TestReadBDDFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(path, []byte(fixtureLabels["a"]), 0644))
	f, err := readBDDFile(path)
	require.NoError(t, err)
	require.Equal(t, "a", f.Name)
	require.Equal(t, "daytime", f.Attributes["timeofday"])
	require.Len(t, f.Frames[0].Objects, 4)
	require.Nil(t, f.Frames[0].Objects[2].Box2D)
	require.Len(t, f.Frames[0].Objects[2].Poly2D, 1)

	path = filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(fixtureLabels["empty"]), 0644))
	_, err = readBDDFile(path)
	require.True(t, errors.Is(err, ErrNoFrames))

	path = filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"frames": [`), 0644))
	_, err = readBDDFile(path)
	require.Error(t, err)

	_, err = readBDDFile(filepath.Join(dir, "missing.json"))
	require.True(t, os.IsNotExist(err))
}
