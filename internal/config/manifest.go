package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Manifest relocates the CSV extracts. Example:
//
//	data_dir: /srv/extracts
//	files:
//	  crm_cust_info: crm/customers_2026.csv
//	  erp_loc_a101: /mnt/erp/LOC_A101.csv
//
// Keys under files are table keys; relative paths resolve against data_dir.
type Manifest struct {
	DataDir string            `koanf:"data_dir"`
	Files   map[string]string `koanf:"files"`
}

// LoadManifest reads a YAML manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", path, err)
	}

	var m Manifest
	if err := k.Unmarshal("", &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Apply overlays the manifest onto the source settings and returns the file
// overrides to hand to the CSV source. A nil manifest changes nothing.
func (m *Manifest) Apply(src *SourceConfig) map[string]string {
	if m == nil {
		return nil
	}
	if m.DataDir != "" {
		src.DataDir = m.DataDir
	}
	return m.Files
}
