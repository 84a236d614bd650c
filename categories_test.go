package bddlabels

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoryTrafficLights(t *testing.T) {
	for _, c := range []string{ColorGreen, ColorRed, ColorYellow, ColorNone} {
		got := Category(TrafficLight, map[string]interface{}{TrafficLightColor: c})
		require.Equal(t, "tl_"+c, got)
		_, ok := ClassID(got, false)
		require.True(t, ok, got)
	}

	// A missing colour counts as none.
	require.Equal(t, "tl_none", Category(TrafficLight, nil))
	require.Equal(t, "tl_none", Category(TrafficLight, map[string]interface{}{TrafficLightColor: 3}))

	// Other categories pass through, even with a colour attribute.
	require.Equal(t, "car", Category("car", map[string]interface{}{TrafficLightColor: ColorRed}))
}

func TestClassID(t *testing.T) {
	id, ok := ClassID("person", false)
	require.True(t, ok)
	require.Equal(t, 0, id)

	id, ok = ClassID("tl_yellow", false)
	require.True(t, ok)
	require.Equal(t, 9, id)

	id, ok = ClassID("train", false)
	require.True(t, ok)
	require.Equal(t, 12, id)

	_, ok = ClassID("traffic light", false)
	require.False(t, ok)
	_, ok = ClassID("drivable area", true)
	require.False(t, ok)

	id, ok = ClassID("truck", true)
	require.True(t, ok)
	require.Equal(t, 0, id)
}

func TestSingleClassCategories(t *testing.T) {
	for _, c := range []string{"car", "bus", "truck", "train"} {
		require.True(t, IsSingleClassCategory(c), c)
	}
	for _, c := range []string{"person", "traffic light", "tl_red", "bike"} {
		require.False(t, IsSingleClassCategory(c), c)
	}
}

func TestClassNames(t *testing.T) {
	names := ClassNames(false, "")
	require.Len(t, names, 13)
	require.Equal(t, "tl_green", names[7])

	// The returned slice is a copy.
	names[0] = "x"
	require.Equal(t, "person", DetectionClasses[0])

	require.Equal(t, []string{DefaultMergedClassName}, ClassNames(true, ""))
	require.Equal(t, []string{"vehicles"}, ClassNames(true, "vehicles"))
	require.Equal(t, "unknown", className(names, 13))
}
