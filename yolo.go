package bddlabels

// YOLO text label files: one line "class cx cy w h" per label, one file per image.

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// WriteYOLO writes one label file per sample to dirPath, named after the sample's image. Samples
// without labels get an empty file, which marks a background image.
func WriteYOLO(dirPath string, db Database) error {
	if err := ensureDir(dirPath); err != nil {
		return err
	}

	for _, s := range db {
		_, baseNoExt, _, err := splitPath(s.Image)
		if err != nil {
			return err
		}
		if err := writeYOLOFile(filepath.Join(dirPath, baseNoExt+".txt"), s.Labels); err != nil {
			return err
		}
	}

	return nil
}

func writeYOLOFile(path string, labels []Label) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeWithErrCheck(file, &err)

	w := bufio.NewWriter(file)
	for _, l := range labels {
		if _, err := fmt.Fprintf(w, "%d %.6f %.6f %.6f %.6f\n", l.Class, l.CenterX, l.CenterY,
			l.Width, l.Height); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteImageList writes the image path of every sample, one per line, to path. Training tools
// that consume YOLO labels usually take such a list per split.
func WriteImageList(path string, db Database) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeWithErrCheck(file, &err)

	w := bufio.NewWriter(file)
	for _, s := range db {
		if _, err := fmt.Fprintln(w, s.Image); err != nil {
			return err
		}
	}
	return w.Flush()
}
