// Package specfile loads the shipyard.yaml build descriptor. One descriptor
// holds shared defaults plus a list of variants; a variant contributes at
// minimum its name, source directory and module path, so layout differences
// between environments live in a single parameterized field instead of
// duplicated descriptor files.
package specfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/baris/shipyard/internal/core/domain"
)

// DefaultName is the descriptor file name looked up when none is given.
const DefaultName = "shipyard.yaml"

var (
	// ErrNoVariants is returned when a descriptor declares nothing to build.
	ErrNoVariants = errors.New("descriptor declares no variants")

	// ErrDuplicateVariant is returned when two variants share a name.
	ErrDuplicateVariant = errors.New("duplicate variant name")
)

// File is a parsed build descriptor. Variants inherit every field they leave
// unset from Defaults.
type File struct {
	Defaults domain.BuildSpec   `yaml:"defaults"`
	Variants []domain.BuildSpec `yaml:"variants"`
}

// Load reads and validates the descriptor at path. The returned specs have
// their ContextDir set to the descriptor's directory so the manifest, source
// and env-file paths resolve relative to it. The environment file is treated
// as opaque: its path is recorded, its contents are never read here.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor %s: %w", path, err)
	}

	if len(f.Variants) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoVariants, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve descriptor path: %w", err)
	}
	contextDir := filepath.Dir(abs)

	seen := make(map[string]struct{}, len(f.Variants))
	for i := range f.Variants {
		v := &f.Variants[i]
		inherit(v, f.Defaults)
		v.ApplyDefaults()
		v.ContextDir = contextDir

		if _, ok := seen[v.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateVariant, v.Name)
		}
		seen[v.Name] = struct{}{}

		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("variant %q: %w", v.Name, err)
		}
	}

	return &f, nil
}

// Variant returns the named variant's spec.
func (f *File) Variant(name string) (domain.BuildSpec, bool) {
	for _, v := range f.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return domain.BuildSpec{}, false
}

// Default returns the first declared variant, the one built when no name is
// given on the command line.
func (f *File) Default() domain.BuildSpec {
	return f.Variants[0]
}

// VariantNames lists the declared variant names in descriptor order.
func (f *File) VariantNames() []string {
	names := make([]string, len(f.Variants))
	for i, v := range f.Variants {
		names[i] = v.Name
	}
	return names
}

// inherit fills unset variant fields from the descriptor defaults. Name, Tag
// and ContextDir are never inherited: a name is per-variant by definition and
// a shared tag would make variants overwrite each other's images.
func inherit(v *domain.BuildSpec, d domain.BuildSpec) {
	if v.BaseImage == "" {
		v.BaseImage = d.BaseImage
	}
	if v.WorkDir == "" {
		v.WorkDir = d.WorkDir
	}
	if v.Manifest == "" {
		v.Manifest = d.Manifest
	}
	if v.SourceDir == "" {
		v.SourceDir = d.SourceDir
	}
	if v.EnvFile == "" {
		v.EnvFile = d.EnvFile
	}
	if v.Module == "" {
		v.Module = d.Module
	}
	if v.Port == 0 {
		v.Port = d.Port
	}
	if v.Workers == 0 {
		v.Workers = d.Workers
	}
}
