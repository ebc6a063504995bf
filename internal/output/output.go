// Package output writes split-stream results to files and reads them
// back, plus a small JSON manifest recording which file holds which
// stream.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteStream writes one stream's bytes to name under dir, creating
// dir if it doesn't exist yet.
func WriteStream(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	return nil
}

// ReadStream reads back a stream file previously written by WriteStream.
func ReadStream(dir, name string) ([]byte, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("output: read %s: %w", path, err)
	}
	return data, nil
}

// Manifest records the file layout a split produced, so an unsplit run
// can rediscover every stream's file without re-deriving names from a
// config it doesn't have in memory yet (the config only becomes
// available after the CONFIG singleton stream is itself read back).
type Manifest struct {
	Format         string   `json:"format"`
	Singletons     []string `json:"singletons"`
	Variables      []string `json:"variables"`
	VariableIDs    []int    `json:"variable_ids"`
	StringLens     []string `json:"string_lens"`
	StringLenIDs   []int    `json:"string_len_ids"`
	Clusters       []string `json:"clusters"`
	ClusterStrLens []string `json:"cluster_string_lens"`
	ClusterLengths string   `json:"cluster_lengths"`
}

// WriteManifest writes m to manifest.json under dir.
func WriteManifest(dir string, m Manifest) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, "manifest.json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return nil
}

// ReadManifest reads manifest.json back from dir.
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	path := filepath.Join(dir, "manifest.json")
	f, err := os.Open(path)
	if err != nil {
		return m, fmt.Errorf("output: open %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return m, fmt.Errorf("output: decode %s: %w", path, err)
	}
	return m, nil
}
