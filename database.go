package bddlabels

// The in-memory label database.

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/cyclopcam/logs"
)

// Sample is a single database record: one image with its detection labels and the paths of its
// drivable area and lane masks.
type Sample struct {
	Name       string            `json:"name"`
	Image      string            `json:"image"`
	Labels     []Label           `json:"labels"`
	Mask       string            `json:"mask"`
	Lane       string            `json:"lane"`
	Size       ImageSize         `json:"size"` // The size the labels were normalised by.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Database is the label database for one split of the dataset.
type Database []Sample

// splitRoots holds the per-split directories of the dataset.
type splitRoots struct {
	image, label, mask, lane string
}

func newSplitRoots(cfg *Config, isTrain bool) splitRoots {
	split := cfg.SplitName(isTrain)
	return splitRoots{
		image: filepath.Join(cfg.DataRoot, split),
		label: filepath.Join(cfg.LabelRoot, split),
		mask:  filepath.Join(cfg.MaskRoot, split),
		lane:  filepath.Join(cfg.LaneRoot, split),
	}
}

// Build builds the database for the train (isTrain) or test split described by cfg.
//
// Every drivable area mask in the split's mask directory yields one sample. The label, image and
// lane paths are derived from the mask path. Samples whose label file cannot be read or parsed are
// logged and skipped.
func Build(log logs.Log, cfg Config, isTrain bool) (Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	roots := newSplitRoots(&cfg, isTrain)

	masks, err := filesByExtInDir(roots.mask, ".png")
	if err != nil {
		return nil, err
	}
	log.Infof("Building database for %d masks in %q", len(masks), roots.mask)

	db := make(Database, 0, len(masks))
	skipped := 0
	for _, maskPath := range masks {
		s, err := buildSample(&cfg, roots, maskPath)
		if err != nil {
			log.Warnf("Skipping %q: %v", maskPath, err)
			skipped++
			continue
		}
		db = append(db, s)
	}

	log.Infof("Database build finished: %d samples, %d labels, %d skipped", len(db),
		db.NumLabels(), skipped)
	return db, nil
}

// buildSample derives the paths belonging to maskPath and converts its label file.
func buildSample(cfg *Config, roots splitRoots, maskPath string) (Sample, error) {
	labelPath, err := rebase(maskPath, roots.mask, roots.label, ".json")
	if err != nil {
		return Sample{}, err
	}
	imagePath, err := rebase(maskPath, roots.mask, roots.image, "."+cfg.DataFormat)
	if err != nil {
		return Sample{}, err
	}
	lanePath, err := rebase(maskPath, roots.mask, roots.lane, "")
	if err != nil {
		return Sample{}, err
	}

	if cfg.RequireFiles {
		for _, p := range []string{imagePath, lanePath} {
			if !fileExists(p) {
				return Sample{}, fmt.Errorf("missing file %q", p)
			}
		}
	}

	size := cfg.ImageSize
	if cfg.ProbeImageSize {
		if size, _, err = decodeImageSize(imagePath); err != nil {
			return Sample{}, err
		}
		if !size.Valid() {
			return Sample{}, fmt.Errorf("invalid image size %v for %q", size, imagePath)
		}
	}

	f, err := readBDDFile(labelPath)
	if err != nil {
		return Sample{}, err
	}

	_, baseNoExt, _, err := splitPath(maskPath)
	if err != nil {
		return Sample{}, err
	}

	return Sample{
		Name:       baseNoExt,
		Image:      imagePath,
		Labels:     FrameLabels(f.Frames[0].Objects, size, cfg.SingleClass),
		Mask:       maskPath,
		Lane:       lanePath,
		Size:       size,
		Attributes: f.Attributes,
	}, nil
}

// NumLabels returns the total number of labels in db.
func (db Database) NumLabels() int {
	n := 0
	for _, s := range db {
		n += len(s.Labels)
	}
	return n
}

// ClassCounts returns the number of labels per class ID.
func (db Database) ClassCounts() map[int]int {
	counts := make(map[int]int)
	for _, s := range db {
		for _, l := range s.Labels {
			counts[l.Class]++
		}
	}
	return counts
}

// LogSummary logs the sample count and the per-class label counts, using names for class IDs.
func (db Database) LogSummary(log logs.Log, names []string) {
	log.Infof("Total number of samples: %d, labels: %d", len(db), db.NumLabels())
	counts := db.ClassCounts()
	for id := range names {
		if n := counts[id]; n > 0 {
			log.Infof("  %-12s %d", names[id], n)
		}
	}
}

// Split randomly splits the data into multiple datasets.
//
// The cumulativeSplits specify the cumulative distribution according to which the data is split
// into the returned datasets. Its last value must be 100. A seed of zero seeds from the clock.
func (db Database) Split(cumulativeSplits []int, seed int64) ([]Database, error) {
	datasets := make([]Database, len(cumulativeSplits))

	// Allocate slightly more than the expected size for each dataset.
	var prev int
	for i, s := range cumulativeSplits {
		if s < prev {
			return nil, fmt.Errorf("the split percentages must be cumulative")
		}
		datasets[i] = make(Database, 0, int(1.05*float64(s-prev)/100*float64(len(db))))
		prev = s
	}
	if prev != 100 {
		return nil, fmt.Errorf("the split percentages do not add up to 100")
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

outer:
	for _, s := range db {
		r := rng.Intn(100)
		for i, c := range cumulativeSplits {
			if r < c {
				datasets[i] = append(datasets[i], s)
				continue outer
			}
		}
	}

	return datasets, nil
}
