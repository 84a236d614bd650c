package bddlabels

// JSON index files: the whole database with its class table, so that a build can be cached.

import (
	"encoding/json"
	"fmt"
	"os"
)

// IndexFile is the on-disk structure of a JSON index.
type IndexFile struct {
	Classes []string `json:"classes"`
	Samples Database `json:"samples"`
}

// WriteIndex writes db and the class names to the JSON file at path.
func WriteIndex(path string, db Database, classes []string) (err error) {
	if db == nil {
		db = Database{}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create index %q: %w", path, err)
	}
	defer closeWithErrCheck(f, &err)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(IndexFile{Classes: classes, Samples: db}); err != nil {
		return fmt.Errorf("cannot write index %q: %w", path, err)
	}
	return nil
}

// ReadIndex reads a JSON index written by WriteIndex.
func ReadIndex(path string) (IndexFile, error) {
	enc, err := readFile(path)
	if err != nil {
		return IndexFile{}, err
	}

	var idx IndexFile
	if err := json.Unmarshal(enc, &idx); err != nil {
		return IndexFile{}, fmt.Errorf("failed to parse index %q: %w", path, err)
	}
	for i, s := range idx.Samples {
		for _, l := range s.Labels {
			if l.Class < 0 || (len(idx.Classes) > 0 && l.Class >= len(idx.Classes)) {
				return IndexFile{}, fmt.Errorf("index %q: sample %d has invalid class %d", path, i,
					l.Class)
			}
		}
	}
	return idx, nil
}
