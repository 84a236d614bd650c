package bddlabels

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Config describes the dataset layout and the conversion options.
type Config struct {
	DataRoot  string `json:"data_root"`  // Images, one sub-directory per split.
	LabelRoot string `json:"label_root"` // Per-image JSON label files.
	MaskRoot  string `json:"mask_root"`  // Drivable area masks (.png).
	LaneRoot  string `json:"lane_root"`  // Lane masks (.png).

	TrainSet   string `json:"train_set"`
	TestSet    string `json:"test_set"`
	DataFormat string `json:"data_format"` // Image file extension without the dot.

	// The original image size used for normalisation, unless ProbeImageSize is set.
	ImageSize ImageSize `json:"image_size"`

	// Read each image's size from its header instead of assuming ImageSize.
	ProbeImageSize bool `json:"probe_image_size"`

	// Skip samples whose image or lane file does not exist.
	RequireFiles bool `json:"require_files"`

	// Keep only SingleClassCategories and merge them into class 0.
	SingleClass     bool   `json:"single_class"`
	MergedClassName string `json:"merged_class_name"`
}

// DefaultConfig returns the configuration for the standard BDD100K layout under root.
func DefaultConfig(root string) Config {
	return Config{
		DataRoot:        filepath.Join(root, "images"),
		LabelRoot:       filepath.Join(root, "det_annotations"),
		MaskRoot:        filepath.Join(root, "da_seg_annotations"),
		LaneRoot:        filepath.Join(root, "ll_seg_annotations"),
		TrainSet:        "train",
		TestSet:         "val",
		DataFormat:      "jpg",
		ImageSize:       ImageSize{Width: 1280, Height: 720},
		MergedClassName: DefaultMergedClassName,
	}
}

// LoadConfig reads the JSON config file at path. Fields missing from the file keep the values of
// base.
func LoadConfig(path string, base Config) (Config, error) {
	enc, err := readFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config %q: %w", path, err)
	}

	cfg := base
	if err := json.Unmarshal(enc, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cfg for missing or inconsistent values.
func (cfg *Config) Validate() error {
	roots := []struct{ name, path string }{
		{"data_root", cfg.DataRoot},
		{"label_root", cfg.LabelRoot},
		{"mask_root", cfg.MaskRoot},
		{"lane_root", cfg.LaneRoot},
	}
	for _, r := range roots {
		if r.path == "" {
			return fmt.Errorf("missing %s", r.name)
		}
	}

	if cfg.TrainSet == "" || cfg.TestSet == "" {
		return fmt.Errorf("missing train or test set name")
	}
	if cfg.DataFormat == "" || strings.ContainsAny(cfg.DataFormat, `./\`) {
		return fmt.Errorf("invalid data format %q", cfg.DataFormat)
	}
	if !cfg.ProbeImageSize && !cfg.ImageSize.Valid() {
		return fmt.Errorf("invalid image size %v", cfg.ImageSize)
	}
	return nil
}

// SplitName returns the directory name of the train or test split.
func (cfg *Config) SplitName(isTrain bool) string {
	if isTrain {
		return cfg.TrainSet
	}
	return cfg.TestSet
}

// ClassNames returns the exporter class names for this configuration.
func (cfg *Config) ClassNames() []string {
	return ClassNames(cfg.SingleClass, cfg.MergedClassName)
}
