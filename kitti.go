package bddlabels

// KITTI specific functionality.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KITTIAnnotation is a single annotation within a KITTI file.
type KITTIAnnotation struct {
	Coords [4]float64 // x1, y1, x2, y2
	Label  string
}

// KITTIAnnotatedFile defines the KITTI annotation structure for a single file.
type KITTIAnnotatedFile struct {
	Annotations []KITTIAnnotation
	FilePath    string
}

// ToKitti converts the database to KITTI annotations with absolute pixel coordinates. Class names
// are looked up in names; spaces are replaced with underscores since KITTI is space separated.
func ToKitti(db Database, names []string) []KITTIAnnotatedFile {
	kittiData := make([]KITTIAnnotatedFile, 0, len(db))
	for _, s := range db {
		kittiFileData := KITTIAnnotatedFile{
			Annotations: make([]KITTIAnnotation, len(s.Labels)),
			FilePath:    s.Image,
		}
		for i, l := range s.Labels {
			kittiFileData.Annotations[i] = KITTIAnnotation{
				Coords: l.Denormalize(s.Size),
				Label:  strings.ReplaceAll(className(names, l.Class), " ", "_"),
			}
		}
		kittiData = append(kittiData, kittiFileData)
	}

	return kittiData
}

// WriteKitti writes data to dirPath, one file per element.
func WriteKitti(dirPath string, data []KITTIAnnotatedFile) error {
	if err := ensureDir(dirPath); err != nil {
		return err
	}

	for _, fileData := range data {
		// Use the image file name with .txt extension as label file name.
		_, baseNoExt, _, err := splitPath(fileData.FilePath)
		if err != nil {
			return err
		}
		if err := writeKittiFile(filepath.Join(dirPath, baseNoExt+".txt"), fileData); err != nil {
			return err
		}
	}

	return nil
}

func writeKittiFile(path string, fileData KITTIAnnotatedFile) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeWithErrCheck(file, &err)

	for _, a := range fileData.Annotations {
		_, err = fmt.Fprintf(file,
			"%s 0.0 0 0.0 %.2f %.2f %.2f %.2f 0.0 0.0 0.0 0.0 0.0 0.0 0.0\n",
			a.Label, a.Coords[0], a.Coords[1], a.Coords[2], a.Coords[3])
		if err != nil {
			return err
		}
	}
	return nil
}
