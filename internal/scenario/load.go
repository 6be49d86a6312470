package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// file is the on-disk shape: either a single scenario at the top level or
// a list under "scenarios".
type file struct {
	Scenario  `yaml:",inline"`
	Scenarios []Scenario `yaml:"scenarios,omitempty"`
}

// Parse decodes scenarios from YAML.
func Parse(data []byte) ([]Scenario, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	if len(f.Scenarios) > 0 {
		if f.Name != "" || len(f.Setup) > 0 || len(f.Assertions) > 0 {
			return nil, fmt.Errorf("mix of top-level scenario and scenarios list")
		}
		return f.Scenarios, nil
	}
	return []Scenario{f.Scenario}, nil
}

// LoadFile reads and parses a scenario file.
func LoadFile(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	scenarios, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return scenarios, nil
}

// LoadFiles loads every path in order and validates the combined set. A
// directory contributes its .yaml and .yml files in name order.
func LoadFiles(paths []string) ([]Scenario, error) {
	var all []Scenario
	for _, p := range paths {
		files, err := expand(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			s, err := LoadFile(f)
			if err != nil {
				return nil, err
			}
			all = append(all, s...)
		}
	}
	if err := ValidateAll(all); err != nil {
		return nil, err
	}
	return all, nil
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", path)
	}
	return files, nil
}
