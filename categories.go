package bddlabels

// The detection class tables and the category remapping rules.

const (
	// TrafficLight is the raw BDD category that is split into one category per light colour.
	TrafficLight = "traffic light"

	// TrafficLightColor is the object attribute holding the colour of a traffic light.
	TrafficLightColor = "trafficLightColor"

	// DefaultMergedClassName names class 0 when all single-class categories are merged.
	DefaultMergedClassName = "vehicle"
)

// Traffic light colour values as they appear in the trafficLightColor attribute.
const (
	ColorGreen  = "green"
	ColorRed    = "red"
	ColorYellow = "yellow"
	ColorNone   = "none"
)

// DetectionClasses lists the detection categories, indexed by class ID.
var DetectionClasses = []string{
	"person",
	"rider",
	"car",
	"bus",
	"truck",
	"bike",
	"motor",
	"tl_green",
	"tl_red",
	"tl_yellow",
	"tl_none",
	"traffic sign",
	"train",
}

// SingleClassCategories lists the raw categories kept in single-class mode, indexed by their
// position in the single-class table. All of them end up as class 0.
var SingleClassCategories = []string{
	"car",
	"bus",
	"truck",
	"train",
}

var (
	detectionIDs   = indexByName(DetectionClasses)
	singleClassIDs = indexByName(SingleClassCategories)
)

func indexByName(names []string) map[string]int {
	m := make(map[string]int, len(names))
	for i, n := range names {
		m[n] = i
	}
	return m
}

// Category returns the category used for class lookup. Traffic lights are replaced with
// "tl_<colour>"; a missing or non-string colour attribute is treated as ColorNone. All other
// categories are returned unchanged.
func Category(raw string, attributes map[string]interface{}) string {
	if raw != TrafficLight {
		return raw
	}
	color, ok := attributes[TrafficLightColor].(string)
	if !ok || color == "" {
		color = ColorNone
	}
	return "tl_" + color
}

// ClassID returns the class ID of the (already remapped) category. ok is false for categories
// outside of DetectionClasses. If merged is true, every recognised category maps to class 0.
func ClassID(category string, merged bool) (id int, ok bool) {
	id, ok = detectionIDs[category]
	if !ok {
		return 0, false
	}
	if merged {
		return 0, true
	}
	return id, true
}

// IsSingleClassCategory reports whether the raw category is kept in single-class mode.
func IsSingleClassCategory(raw string) bool {
	_, ok := singleClassIDs[raw]
	return ok
}

// ClassNames returns the class names indexed by class ID, as seen by exporters. In merged mode
// there is a single class named mergedName (DefaultMergedClassName when empty).
func ClassNames(merged bool, mergedName string) []string {
	if merged {
		if mergedName == "" {
			mergedName = DefaultMergedClassName
		}
		return []string{mergedName}
	}
	names := make([]string, len(DetectionClasses))
	copy(names, DetectionClasses)
	return names
}

// className returns names[id], or a placeholder if id is out of range.
func className(names []string, id int) string {
	if id >= 0 && id < len(names) {
		return names[id]
	}
	return "unknown"
}
