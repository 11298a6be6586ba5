package model

import (
	"fmt"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// LoadPackage decodes one package descriptor from YAML or JSON.
func LoadPackage(r io.Reader) (PackageDescriptor, error) {
	var desc PackageDescriptor
	if err := yaml.NewDecoder(r).Decode(&desc); err != nil {
		return PackageDescriptor{}, fmt.Errorf("decode package: %w", err)
	}
	if desc.Prefix == "" {
		return PackageDescriptor{}, fmt.Errorf("package %q: missing prefix", desc.Name)
	}
	if desc.URI == "" {
		return PackageDescriptor{}, fmt.Errorf("package %q: missing uri", desc.Name)
	}
	return desc, nil
}

// LoadFS loads the named package descriptors from fsys and builds a registry.
func LoadFS(fsys fs.FS, paths ...string) (*Registry, error) {
	if fsys == nil {
		return nil, fmt.Errorf("load packages: nil fs")
	}
	descs := make([]PackageDescriptor, 0, len(paths))
	for _, path := range paths {
		desc, err := loadFile(fsys, path)
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}
	return New(descs...)
}

func loadFile(fsys fs.FS, path string) (PackageDescriptor, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return PackageDescriptor{}, fmt.Errorf("open package %s: %w", path, err)
	}
	defer f.Close()
	desc, err := LoadPackage(f)
	if err != nil {
		return PackageDescriptor{}, fmt.Errorf("%s: %w", path, err)
	}
	return desc, nil
}
