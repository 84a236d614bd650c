package bddlabels

import "fmt"

// ImageSize is the width and height of an image in pixels.
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s ImageSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Valid reports whether both dimensions are positive.
func (s ImageSize) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Label is a single detection label record. The box is given by its center and size, normalised
// by the image width (x terms) and height (y terms).
type Label struct {
	Class   int     `json:"class"`
	CenterX float64 `json:"cx"`
	CenterY float64 `json:"cy"`
	Width   float64 `json:"w"`
	Height  float64 `json:"h"`
}

// Row returns the label as the fixed-width record [class, cx, cy, w, h].
func (l Label) Row() [5]float64 {
	return [5]float64{float64(l.Class), l.CenterX, l.CenterY, l.Width, l.Height}
}

// NormalizeBox converts the absolute corners (x1,y1) and (x2,y2) to a Label with normalised center
// and size. Coordinates are not clamped to the image.
func NormalizeBox(class int, size ImageSize, x1, y1, x2, y2 float64) Label {
	dw := 1 / float64(size.Width)
	dh := 1 / float64(size.Height)
	return Label{
		Class:   class,
		CenterX: (x1 + x2) / 2 * dw,
		CenterY: (y1 + y2) / 2 * dh,
		Width:   (x2 - x1) * dw,
		Height:  (y2 - y1) * dh,
	}
}

// Denormalize returns the absolute x1, y1, x2, y2 corners of l in an image of the given size.
func (l Label) Denormalize(size ImageSize) [4]float64 {
	w := float64(size.Width)
	h := float64(size.Height)
	return [4]float64{
		(l.CenterX - l.Width/2) * w,
		(l.CenterY - l.Height/2) * h,
		(l.CenterX + l.Width/2) * w,
		(l.CenterY + l.Height/2) * h,
	}
}
