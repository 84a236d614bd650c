package bddlabels

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/cyclopcam/logs"
	"github.com/disintegration/imaging"
)

// Output sub-directories of Resize.
const (
	ResizedImageDir = "images"
	ResizedMaskDir  = "da_seg_annotations"
	ResizedLaneDir  = "ll_seg_annotations"
)

// ResampleFilter returns the imaging filter with the given name
// {nearest, box, linear, gaussian, lanczos}.
func ResampleFilter(name string) (imaging.ResampleFilter, error) {
	switch name {
	case "nearest":
		return imaging.NearestNeighbor, nil
	case "box":
		return imaging.Box, nil
	case "linear":
		return imaging.Linear, nil
	case "gaussian":
		return imaging.Gaussian, nil
	case "lanczos":
		return imaging.Lanczos, nil
	}
	return imaging.ResampleFilter{}, fmt.Errorf("unknown resampling filter %q", name)
}

// Resize resizes the image, drivable area mask and lane mask of every sample to size and writes
// them to sub-directories of outDir. Images are resampled with imageFilter and written in their
// original encoding; masks use nearest neighbour sampling and are written as PNG.
//
// The sample paths and sizes in db are updated. The normalised labels are unaffected.
func (db Database) Resize(log logs.Log, outDir string, size ImageSize, imageFilter string,
	jpegQuality int) error {

	if !size.Valid() {
		return fmt.Errorf("invalid target size %v", size)
	}
	filter, err := ResampleFilter(imageFilter)
	if err != nil {
		return err
	}
	dirs := []string{
		filepath.Join(outDir, ResizedImageDir),
		filepath.Join(outDir, ResizedMaskDir),
		filepath.Join(outDir, ResizedLaneDir),
	}
	for _, d := range dirs {
		if err := ensureDir(d); err != nil {
			return err
		}
	}
	if len(db) == 0 {
		return nil
	}
	log.Infof("Resizing %d samples to %v", len(db), size)

	// Limit the number of goroutines in flight, as they load potentially large images into memory.
	numTasks := 2 * runtime.NumCPU()
	if len(db) < numTasks {
		numTasks = len(db)
	}
	workQueue := make(chan *Sample, 2*numTasks)
	errors := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(numTasks)
	for i := 0; i < numTasks; i++ {
		go func() {
			defer wg.Done()
			for s := range workQueue {
				if err := resizeSample(s, dirs, size, filter, jpegQuality); err != nil {
					// Keep the first error only.
					select {
					case errors <- err:
					default:
					}
				}
			}
		}()
	}

	for i := range db {
		workQueue <- &db[i]
	}
	close(workQueue)
	wg.Wait()

	close(errors)
	if err, ok := <-errors; ok {
		return err
	}
	return nil
}

// resizeSample resizes the files of a single sample. The sample is only updated if all files were
// written.
func resizeSample(s *Sample, dirs []string, size ImageSize, filter imaging.ResampleFilter,
	jpegQuality int) error {

	jobs := []struct {
		in     string
		outDir string
		ext    string
		filter imaging.ResampleFilter
	}{
		{s.Image, dirs[0], strings.ToLower(filepath.Ext(s.Image)), filter},
		{s.Mask, dirs[1], ".png", imaging.NearestNeighbor},
		{s.Lane, dirs[2], ".png", imaging.NearestNeighbor},
	}

	outPaths := make([]string, len(jobs))
	for i, j := range jobs {
		img, err := loadImage(j.in)
		if err != nil {
			return err
		}
		resized := resizeImage(img, size, j.filter)

		_, baseNoExt, _, err := splitPath(j.in)
		if err != nil {
			return err
		}
		outPaths[i] = filepath.Join(j.outDir, baseNoExt+j.ext)
		if err := saveImage(outPaths[i], resized, jpegQuality); err != nil {
			return fmt.Errorf("failed to write %q: %w", outPaths[i], err)
		}
	}

	s.Image, s.Mask, s.Lane = outPaths[0], outPaths[1], outPaths[2]
	s.Size = size
	return nil
}
