package bddlabels

// TFRecord object detection specific functionality.

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cyclopcam/logs"
	"github.com/golang/protobuf/proto"
	"github.com/ryszard/tfutils/go/example"
	"github.com/ryszard/tfutils/go/tfrecord"
	"github.com/ryszard/tfutils/proto/tensorflow/core/example" // package tensorflow
)

// TFFeatureMap maps feature names to their values. Values must be convertible to
// tensorflow.Feature.
type TFFeatureMap map[string]interface{}

// tfRecordClassID converts a class ID to a TensorFlow label map ID, which starts at 1.
func tfRecordClassID(class int) int64 {
	return int64(class) + 1
}

// toTFRecord converts a single sample to the features of a tf.Example.
func toTFRecord(s Sample, names []string) (TFFeatureMap, error) {
	size, format, err := decodeImageSize(s.Image)
	if err != nil {
		return nil, err
	}
	imgData, err := readFile(s.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to read the image: %w", err)
	}

	// Per image data.
	f := make(TFFeatureMap, 16)
	f["image/height"] = size.Height
	f["image/width"] = size.Width
	f["image/filename"] = s.Image
	f["image/source_id"] = s.Name
	f["image/encoded"] = imgData
	f["image/format"] = format

	// Per label data.
	n := len(s.Labels)
	xmins := make([]float32, n)
	ymins := make([]float32, n)
	xmaxs := make([]float32, n)
	ymaxs := make([]float32, n)
	classes := make([]string, n)
	classIDs := make([]int64, n)
	for i, l := range s.Labels {
		xmins[i] = float32(l.CenterX - l.Width/2)
		ymins[i] = float32(l.CenterY - l.Height/2)
		xmaxs[i] = float32(l.CenterX + l.Width/2)
		ymaxs[i] = float32(l.CenterY + l.Height/2)
		classes[i] = className(names, l.Class)
		classIDs[i] = tfRecordClassID(l.Class)
	}
	f["image/object/bbox/xmin"] = xmins
	f["image/object/bbox/ymin"] = ymins
	f["image/object/bbox/xmax"] = xmaxs
	f["image/object/bbox/ymax"] = ymaxs
	f["image/object/class/text"] = classes
	f["image/object/class/label"] = classIDs

	return f, nil
}

// WriteTFRecord does a streaming conversion, serialisation and file write of db to one or more
// TFRecord files stored under recordFilePath (with suffixes added when numShards>1). The shard
// count is reduced so that no shard is empty, and an empty db yields a single empty file. Samples
// whose image cannot be read are logged and skipped.
//
// The label map for names is written to labelMapPath.
func WriteTFRecord(log logs.Log, recordFilePath, labelMapPath string, db Database,
	names []string, numShards int) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("conversion to TensorFlow Example failed: %v", e)
		}
	}()

	if numShards <= 0 || len(db) == 0 {
		numShards = 1
	}
	shardSize := 1
	if len(db) > 0 {
		shardSize = int(math.Ceil(float64(len(db)) / float64(numShards)))
		numShards = int(math.Ceil(float64(len(db)) / float64(shardSize)))
	}

	var shardFile *os.File
	closeShard := func() error {
		if shardFile == nil {
			return nil
		}
		e := shardFile.Close()
		shardFile = nil
		return e
	}
	defer func() {
		if e := closeShard(); e != nil && err == nil {
			err = e
		}
	}()

	openShard := func(idx int) error {
		if err := closeShard(); err != nil {
			return err
		}
		shardPath := recordFilePath
		if numShards > 1 {
			shardPath += fmt.Sprintf("-%05d-of-%05d", idx, numShards)
		}
		f, err := os.Create(shardPath)
		if err != nil {
			return fmt.Errorf("failed to create shard at %q: %w", shardPath, err)
		}
		shardFile = f
		return nil
	}

	// An empty database still gets an (empty) record file.
	if len(db) == 0 {
		if err := openShard(0); err != nil {
			return err
		}
	}

	written := 0
	for i, s := range db {
		// Check if a new shard file needs to be opened for writing.
		if i%shardSize == 0 {
			if err := openShard(i / shardSize); err != nil {
				return err
			}
		}

		features, err := toTFRecord(s, names)
		if err != nil {
			log.Warnf("Failed to convert %q: %v", s.Image, err)
			continue
		}
		if err := writeTFRecordExample(shardFile, example.New(features)); err != nil {
			return fmt.Errorf("failed to write example for %q: %w", s.Image, err)
		}
		written++
	}
	log.Infof("Wrote %d TFRecord examples in %d shard(s)", written, numShards)

	return WriteLabelMap(labelMapPath, names)
}

// writeTFRecordExample serialises the example and writes it as a TFRecord to w.
func writeTFRecordExample(w io.Writer, e *tensorflow.Example) error {
	enc, err := proto.Marshal(e)
	if err != nil {
		return err
	}

	return tfrecord.Write(w, enc)
}

// WriteLabelMap writes names as a StringIntLabelMap in prototxt format to path. IDs start at 1.
func WriteLabelMap(path string, names []string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create the label map file %q: %w", path, err)
	}
	defer closeWithErrCheck(file, &err)

	w := bufio.NewWriter(file)
	for id, name := range names {
		if _, err := fmt.Fprintf(w, "item {\n  id: %d\n  name: %q\n}\n", tfRecordClassID(id),
			name); err != nil {
			return fmt.Errorf("failed to write the label map %q: %w", path, err)
		}
	}
	return w.Flush()
}
