package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultAPI = "http://127.0.0.1:3001"

// Manifest names the API to import into and the CSV file of each kind.
//
//	api: http://localhost:3001
//	files:
//	  owners: owners.csv
//	  technologies: technologies.csv
//	  capabilities: capabilities.csv
//	  applications: applications.csv
//	  skills: skills.csv
type Manifest struct {
	API   string `yaml:"api"`
	Files Files  `yaml:"files"`
}

// Files holds one CSV path per kind. Empty paths are not imported.
type Files struct {
	Owners       string `yaml:"owners"`
	Technologies string `yaml:"technologies"`
	Capabilities string `yaml:"capabilities"`
	Applications string `yaml:"applications"`
	Skills       string `yaml:"skills"`
}

// Empty reports whether no file is configured.
func (f Files) Empty() bool {
	return f == Files{}
}

// LoadManifest reads a manifest file. Relative CSV paths resolve against
// the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, p := range m.Files.paths() {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return &m, nil
}

// Override replaces manifest values with the non-empty ones given on the command line.
func (m *Manifest) Override(api string, files Files) {
	if api != "" {
		m.API = api
	}
	src := files.paths()
	for i, dst := range m.Files.paths() {
		if *src[i] != "" {
			*dst = *src[i]
		}
	}
}

func (f *Files) paths() []*string {
	return []*string{&f.Owners, &f.Technologies, &f.Capabilities, &f.Applications, &f.Skills}
}
