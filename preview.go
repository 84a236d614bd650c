package bddlabels

// Preview images: the labels of a sample drawn onto its image.

import (
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/cyclopcam/logs"
	"github.com/fogleman/gg"
)

// previewPalette holds the box colour per class ID, repeating for larger IDs.
var previewPalette = []color.RGBA{
	{230, 25, 75, 255},
	{60, 180, 75, 255},
	{255, 225, 25, 255},
	{0, 130, 200, 255},
	{245, 130, 48, 255},
	{145, 30, 180, 255},
	{70, 240, 240, 255},
	{240, 50, 230, 255},
	{210, 245, 60, 255},
	{250, 190, 212, 255},
	{0, 128, 128, 255},
	{170, 110, 40, 255},
	{128, 0, 0, 255},
}

func previewColor(class int) color.RGBA {
	if class < 0 {
		class = -class
	}
	return previewPalette[class%len(previewPalette)]
}

// RenderPreview draws the labels of s with their class names onto its image and saves the result
// as PNG to outPath. Labels are scaled to the actual image size.
func RenderPreview(s Sample, names []string, outPath string) error {
	img, err := loadImage(s.Image)
	if err != nil {
		return err
	}
	b := img.Bounds()
	size := ImageSize{Width: b.Dx(), Height: b.Dy()}

	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(2)
	for _, l := range s.Labels {
		c := l.Denormalize(size)
		dc.SetColor(previewColor(l.Class))
		dc.DrawRectangle(c[0], c[1], c[2]-c[0], c[3]-c[1])
		dc.Stroke()
		dc.DrawStringAnchored(className(names, l.Class), c[0]+2, c[1]-2, 0, 0)
	}

	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("failed to write preview %q: %w", outPath, err)
	}
	return nil
}

// WritePreviews renders a preview for each of the first limit samples (all if limit <= 0) into
// dirPath. Samples whose image cannot be loaded are logged and skipped.
func WritePreviews(log logs.Log, dirPath string, db Database, names []string, limit int) error {
	if err := ensureDir(dirPath); err != nil {
		return err
	}
	if limit <= 0 || limit > len(db) {
		limit = len(db)
	}

	written := 0
	for _, s := range db[:limit] {
		outPath := filepath.Join(dirPath, s.Name+".png")
		if err := RenderPreview(s, names, outPath); err != nil {
			log.Warnf("Skipping preview of %q: %v", s.Image, err)
			continue
		}
		written++
	}
	log.Infof("Wrote %d previews to %s", written, dirPath)
	return nil
}
