package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/entities.json
var bundledDataset []byte

// Bundled returns the records of the dataset compiled into the binary.
func Bundled() ([]Entity, error) {
	return decodeJSON(bundledDataset)
}

// LoadFile reads a dataset from a .json, .yaml or .yml file.
func LoadFile(path string) ([]Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return decodeJSON(data)
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported dataset extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Open builds a Store from the dataset at path, or from the bundled dataset
// when path is empty.
func Open(path, imageBaseURL string) (*Store, error) {
	var (
		records []Entity
		err     error
	)
	if path == "" {
		records, err = Bundled()
	} else {
		records, err = LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return NewStore(records, imageBaseURL)
}

func decodeJSON(data []byte) ([]Entity, error) {
	var records []Entity
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return records, nil
}

func decodeYAML(data []byte) ([]Entity, error) {
	var records []Entity
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return records, nil
}
