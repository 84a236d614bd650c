package bddlabels

// BDD100K per-frame label file specific functionality.

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoFrames is returned for label files without any frame.
var ErrNoFrames = errors.New("label file has no frames")

// BDDBox2D is an axis-aligned box with absolute pixel corners.
type BDDBox2D struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// BDDPoly2D is a polygon or polyline, as used for drivable areas and lanes.
type BDDPoly2D struct {
	Vertices [][2]float64 `json:"vertices"`
	Types    string       `json:"types"`
	Closed   bool         `json:"closed"`
}

// BDDObject is a single annotation within a frame. Detection objects carry a Box2D, drivable area
// and lane objects carry Poly2D instead.
type BDDObject struct {
	ID         int                    `json:"id"`
	Category   string                 `json:"category"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Box2D      *BDDBox2D              `json:"box2d,omitempty"`
	Poly2D     []BDDPoly2D            `json:"poly2d,omitempty"`
}

// BDDFrame is one annotated frame of a label file.
type BDDFrame struct {
	Timestamp int64       `json:"timestamp"`
	Objects   []BDDObject `json:"objects"`
}

// BDDAnnotatedFile defines the BDD label structure for a single image.
type BDDAnnotatedFile struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"` // weather, scene, timeofday
	Frames     []BDDFrame        `json:"frames"`
}

// readBDDFile reads and parses the BDD label file at path.
func readBDDFile(path string) (BDDAnnotatedFile, error) {
	enc, err := readFile(path)
	if err != nil {
		return BDDAnnotatedFile{}, err
	}

	var f BDDAnnotatedFile
	if err := json.Unmarshal(enc, &f); err != nil {
		return BDDAnnotatedFile{}, fmt.Errorf("failed to parse BDD labels from %q: %w", path, err)
	}
	if len(f.Frames) == 0 {
		return BDDAnnotatedFile{}, fmt.Errorf("%q: %w", path, ErrNoFrames)
	}

	return f, nil
}

// FilterObjects returns the objects that have a bounding box. In merged mode, only objects whose
// raw category is one of SingleClassCategories are kept. The order is preserved.
func FilterObjects(objects []BDDObject, merged bool) []BDDObject {
	remain := make([]BDDObject, 0, len(objects))
	for _, obj := range objects {
		if obj.Box2D == nil {
			continue
		}
		if merged && !IsSingleClassCategory(obj.Category) {
			continue
		}
		remain = append(remain, obj)
	}
	return remain
}

// FrameLabels converts the objects of a frame to label records, with coordinates normalised by
// size. Objects without a box, outside the single-class set (in merged mode), or with a category
// that has no class ID are dropped, so there can be fewer labels than FilterObjects returns.
func FrameLabels(objects []BDDObject, size ImageSize, merged bool) []Label {
	objects = FilterObjects(objects, merged)

	labels := make([]Label, 0, len(objects))
	for _, obj := range objects {
		id, ok := ClassID(Category(obj.Category, obj.Attributes), merged)
		if !ok {
			continue
		}
		b := obj.Box2D
		labels = append(labels, NormalizeBox(id, size, b.X1, b.Y1, b.X2, b.Y2))
	}
	return labels
}
