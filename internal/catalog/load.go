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

//go:embed default.json
var defaultDataset []byte

// Format names a dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension; anything that is
// not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads a dataset file. An empty path selects the bundled dataset.
func Load(path string) (*Dataset, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	ds, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return ds, nil
}

// Default returns the dataset bundled into the binary.
func Default() (*Dataset, error) {
	return Parse(defaultDataset, FormatJSON)
}

// Parse decodes a list of categories in the given format.
func Parse(data []byte, format Format) (*Dataset, error) {
	var categories []Category
	if len(bytes.TrimSpace(data)) == 0 {
		return NewDataset(nil), nil
	}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &categories); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &categories); err != nil {
			return nil, err
		}
	}
	return NewDataset(categories), nil
}
