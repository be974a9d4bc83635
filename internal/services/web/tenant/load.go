package tenant

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type tenantsFile struct {
	Tenants []Descriptor `yaml:"tenants"`
}

// LoadFile reads a YAML tenants table and builds a Registry. An empty path
// yields an empty registry.
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tenants file: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("tenants file %s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes a YAML tenants table. Unknown fields are rejected.
func Parse(data []byte) (*Registry, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var file tenantsFile
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode tenants: %w", err)
	}
	return NewRegistry(file.Tenants)
}
