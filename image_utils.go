package bddlabels

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register the JPEG decoder.
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// resizeImage resamples img to exactly size with filter.
func resizeImage(img image.Image, size ImageSize, filter imaging.ResampleFilter) image.Image {
	return imaging.Resize(img, size.Width, size.Height, filter)
}

// decodeImageSize reads the header of the image at path and returns its size and format.
func decodeImageSize(path string) (size ImageSize, format string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return ImageSize{}, "", err
	}
	defer file.Close()

	config, format, err := image.DecodeConfig(file)
	if err != nil {
		return ImageSize{}, "", fmt.Errorf("failed to decode the image header of %q: %w", path, err)
	}
	return ImageSize{Width: config.Width, Height: config.Height}, format, nil
}

// loadImage reads and decodes the image at path.
func loadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %q: %w", path, err)
	}
	return img, nil
}

// saveImage saves the image to path, encoding it as PNG or JPEG depending on the file extension.
// Masks must be written as PNG to stay lossless.
func saveImage(path string, img image.Image, jpegQuality int) (err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		var f *os.File
		if f, err = os.Create(path); err != nil {
			return err
		}
		defer closeWithErrCheck(f, &err)
		return png.Encode(f, img)
	default:
		return imaging.Save(img, path, imaging.JPEGQuality(jpegQuality))
	}
}
