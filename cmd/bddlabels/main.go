// Builds the label database of a BDD100K-style dataset (detection boxes, drivable area masks and
// lane masks) and exports it to JSON, YOLO, KITTI, TFRecord and SQLite label formats.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/sensorable/bddlabels"
)

// outputs holds the per-split output paths of each exporter. Each list is empty or has one path
// per split.
type outputs struct {
	index        []string
	yolo         []string
	imageList    []string
	kitti        []string
	tfRecord     []string
	sqlite       []string
	labelMapPath string
	numShards    int
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	l := strings.Split(s, ",")
	for i := range l {
		l[i] = filepath.Clean(l[i])
	}
	return l
}

// configFlags holds the config values given on the command line. Empty strings and zero sizes are
// unset. The booleans are "true", "false" or unset, so they can override a config file both ways.
type configFlags struct {
	dataRoot, labelRoot, maskRoot, laneRoot string
	trainSet, testSet, dataFormat           string
	mergedName                              string
	width, height                           int
	probeSize, requireFiles, singleClass    string
}

// applyFlags overlays the values set in f on cfg.
func applyFlags(cfg bddlabels.Config, f configFlags) (bddlabels.Config, error) {
	for _, o := range []struct {
		dst *string
		src string
	}{
		{&cfg.DataRoot, f.dataRoot},
		{&cfg.LabelRoot, f.labelRoot},
		{&cfg.MaskRoot, f.maskRoot},
		{&cfg.LaneRoot, f.laneRoot},
		{&cfg.TrainSet, f.trainSet},
		{&cfg.TestSet, f.testSet},
		{&cfg.DataFormat, f.dataFormat},
		{&cfg.MergedClassName, f.mergedName},
	} {
		if o.src != "" {
			*o.dst = o.src
		}
	}
	if f.width > 0 {
		cfg.ImageSize.Width = f.width
	}
	if f.height > 0 {
		cfg.ImageSize.Height = f.height
	}
	for _, o := range []struct {
		dst  *bool
		src  string
		name string
	}{
		{&cfg.ProbeImageSize, f.probeSize, "probe-size"},
		{&cfg.RequireFiles, f.requireFiles, "require-files"},
		{&cfg.SingleClass, f.singleClass, "single-class"},
	} {
		if o.src == "" {
			continue
		}
		v, err := strconv.ParseBool(o.src)
		if err != nil {
			return cfg, fmt.Errorf("invalid value for --%s: %q", o.name, o.src)
		}
		*o.dst = v
	}
	return cfg, nil
}

// parseSplits parses comma-separated percentages into cumulative percentages.
func parseSplits(s string) ([]int, error) {
	var cumulative []int
	var sum int
	for _, v := range strings.Split(s, ",") {
		i, err := strconv.Atoi(v)
		if err != nil || i < 0 || i > 100 {
			return nil, fmt.Errorf("invalid value in --split: %q", v)
		}
		sum += i
		cumulative = append(cumulative, sum)
	}
	if sum != 100 {
		return nil, fmt.Errorf("the values in --split must add up to 100%%")
	}
	return cumulative, nil
}

func main() {
	parser := argparse.NewParser("bddlabels", "Build and export the label database of a BDD100K-style dataset")

	// Dataset layout.
	root := parser.String("r", "root", &argparse.Options{Help: "Dataset root; the default layout is derived from it", Default: "."})
	configPath := parser.String("c", "config", &argparse.Options{Help: "JSON config file, applied before the flags below"})
	dataRoot := parser.String("", "data-root", &argparse.Options{Help: "Image root directory"})
	labelRoot := parser.String("", "label-root", &argparse.Options{Help: "Detection label root directory"})
	maskRoot := parser.String("", "mask-root", &argparse.Options{Help: "Drivable area mask root directory"})
	laneRoot := parser.String("", "lane-root", &argparse.Options{Help: "Lane mask root directory"})
	trainSet := parser.String("", "train-set", &argparse.Options{Help: "Name of the train split directory"})
	testSet := parser.String("", "test-set", &argparse.Options{Help: "Name of the test split directory"})
	dataFormat := parser.String("", "format", &argparse.Options{Help: "Image file extension"})
	width := parser.Int("", "width", &argparse.Options{Help: "Original image width used for normalisation"})
	height := parser.Int("", "height", &argparse.Options{Help: "Original image height used for normalisation"})
	boolValues := []string{"true", "false"}
	probeSize := parser.Selector("", "probe-size", boolValues, &argparse.Options{Help: "Read each image's size from its header"})
	requireFiles := parser.Selector("", "require-files", boolValues, &argparse.Options{Help: "Skip samples whose image or lane file is missing"})
	singleClass := parser.Selector("s", "single-class", boolValues, &argparse.Options{Help: "Keep only car, bus, truck and train, merged into class 0"})
	mergedName := parser.String("", "merged-name", &argparse.Options{Help: "Class name of the merged class in single-class mode"})
	val := parser.Flag("", "val", &argparse.Options{Help: "Build the test split instead of the train split"})
	indexIn := parser.String("i", "index-in", &argparse.Options{Help: "Load a JSON index instead of building the database"})

	// Outputs.
	indexOut := parser.String("o", "index", &argparse.Options{Help: "JSON index output file(s)"})
	yoloOut := parser.String("", "yolo", &argparse.Options{Help: "YOLO label output directory(s)"})
	imageListOut := parser.String("", "image-list", &argparse.Options{Help: "Image list output file(s)"})
	kittiOut := parser.String("", "kitti", &argparse.Options{Help: "KITTI label output directory(s)"})
	tfRecordOut := parser.String("", "tfrecord", &argparse.Options{Help: "TFRecord output file(s)"})
	labelMapOut := parser.String("", "tfrecord-label-map", &argparse.Options{Help: "TFRecord label map output file", Default: "label_map.pbtxt"})
	numShards := parser.Int("", "num-shards", &argparse.Options{Help: "Number of TFRecord shards per output", Default: 1})
	sqliteOut := parser.String("", "sqlite", &argparse.Options{Help: "SQLite index output file(s)"})
	splits := parser.String("", "split", &argparse.Options{Help: "Comma-separated split percentages; outputs take one comma-separated path per split", Default: "100"})
	seed := parser.Int("", "seed", &argparse.Options{Help: "Random seed for --split (0 uses the clock)", Default: 0})

	// Image outputs.
	previewOut := parser.String("", "preview", &argparse.Options{Help: "Directory for label preview images"})
	previewLimit := parser.Int("", "preview-limit", &argparse.Options{Help: "Maximum number of previews (0 for all)", Default: 100})
	resizeOut := parser.String("", "resize-out", &argparse.Options{Help: "Directory for resized images and masks"})
	resizeWidth := parser.Int("", "resize-width", &argparse.Options{Help: "Target width for --resize-out", Default: 640})
	resizeHeight := parser.Int("", "resize-height", &argparse.Options{Help: "Target height for --resize-out", Default: 384})
	resizeFilter := parser.Selector("", "resize-filter", []string{"nearest", "box", "linear", "gaussian", "lanczos"}, &argparse.Options{Help: "Image resampling filter", Default: "linear"})
	jpegQuality := parser.Int("", "jpeg-quality", &argparse.Options{Help: "JPEG quality for resized images [1, 100]", Default: 90})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	fail := func(format string, a ...interface{}) {
		logger.Errorf(format, a...)
		os.Exit(1)
	}

	// Configuration: defaults, then the config file, then the flags.
	cfg := bddlabels.DefaultConfig(*root)
	if *configPath != "" {
		if cfg, err = bddlabels.LoadConfig(*configPath, cfg); err != nil {
			fail("%v", err)
		}
	}
	cfg, err = applyFlags(cfg, configFlags{
		dataRoot:     *dataRoot,
		labelRoot:    *labelRoot,
		maskRoot:     *maskRoot,
		laneRoot:     *laneRoot,
		trainSet:     *trainSet,
		testSet:      *testSet,
		dataFormat:   *dataFormat,
		mergedName:   *mergedName,
		width:        *width,
		height:       *height,
		probeSize:    *probeSize,
		requireFiles: *requireFiles,
		singleClass:  *singleClass,
	})
	if err != nil {
		fail("%v", err)
	}

	cumulativeSplits, err := parseSplits(*splits)
	if err != nil {
		fail("%v", err)
	}
	out := outputs{
		index:        splitList(*indexOut),
		yolo:         splitList(*yoloOut),
		imageList:    splitList(*imageListOut),
		kitti:        splitList(*kittiOut),
		tfRecord:     splitList(*tfRecordOut),
		sqlite:       splitList(*sqliteOut),
		labelMapPath: filepath.Clean(*labelMapOut),
		numShards:    *numShards,
	}
	for _, l := range [][]string{out.index, out.yolo, out.imageList, out.kitti, out.tfRecord, out.sqlite} {
		if len(l) != 0 && len(l) != len(cumulativeSplits) {
			fail("The number of output paths must match the number of values in --split")
		}
	}
	if *jpegQuality < 1 || *jpegQuality > 100 {
		*jpegQuality = 90
		logger.Warnf("Invalid JPEG quality, setting it to %d", *jpegQuality)
	}

	// Build or load the database.
	var db bddlabels.Database
	names := cfg.ClassNames()
	if *indexIn != "" {
		idx, err := bddlabels.ReadIndex(*indexIn)
		if err != nil {
			fail("Failed to load the index: %v", err)
		}
		db = idx.Samples
		if len(idx.Classes) > 0 {
			names = idx.Classes
		}
		logger.Infof("Loaded %d samples from %s", len(db), *indexIn)
	} else {
		if db, err = bddlabels.Build(logger, cfg, !*val); err != nil {
			fail("Failed to build the database: %v", err)
		}
	}

	if *resizeOut != "" {
		size := bddlabels.ImageSize{Width: *resizeWidth, Height: *resizeHeight}
		if err := db.Resize(logger, *resizeOut, size, *resizeFilter, *jpegQuality); err != nil {
			fail("Resizing failed: %v", err)
		}
	}

	// Split into output datasets.
	datasets := []bddlabels.Database{db}
	if len(cumulativeSplits) > 1 {
		if datasets, err = db.Split(cumulativeSplits, int64(*seed)); err != nil {
			fail("Failed to split the dataset: %v", err)
		}
	}

	for i, data := range datasets {
		if err := writeOutputs(logger, out, i, data, names); err != nil {
			fail("Conversion failed: %v", err)
		}
	}

	if *previewOut != "" {
		if err := bddlabels.WritePreviews(logger, *previewOut, db, names, *previewLimit); err != nil {
			fail("Failed to write previews: %v", err)
		}
	}

	db.LogSummary(logger, names)
}

// writeOutputs writes dataset i to every requested output.
func writeOutputs(logger logs.Log, out outputs, i int, data bddlabels.Database, names []string) error {
	if len(out.index) > 0 {
		if err := bddlabels.WriteIndex(out.index[i], data, names); err != nil {
			return err
		}
		logger.Infof("Wrote the index of %d samples to %s", len(data), out.index[i])
	}
	if len(out.yolo) > 0 {
		if err := bddlabels.WriteYOLO(out.yolo[i], data); err != nil {
			return err
		}
		logger.Infof("Wrote YOLO labels for %d samples to %s", len(data), out.yolo[i])
	}
	if len(out.imageList) > 0 {
		if err := bddlabels.WriteImageList(out.imageList[i], data); err != nil {
			return err
		}
	}
	if len(out.kitti) > 0 {
		if err := bddlabels.WriteKitti(out.kitti[i], bddlabels.ToKitti(data, names)); err != nil {
			return err
		}
		logger.Infof("Wrote KITTI labels for %d samples to %s", len(data), out.kitti[i])
	}
	if len(out.tfRecord) > 0 {
		err := bddlabels.WriteTFRecord(logger, out.tfRecord[i], out.labelMapPath, data, names,
			out.numShards)
		if err != nil {
			return err
		}
	}
	if len(out.sqlite) > 0 {
		if err := bddlabels.WriteSQLite(out.sqlite[i], data); err != nil {
			return err
		}
		logger.Infof("Wrote the SQLite index of %d samples to %s", len(data), out.sqlite[i])
	}
	return nil
}
