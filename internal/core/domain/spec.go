package domain

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultWorkDir is the working directory established inside every image.
	DefaultWorkDir = "/app"
	// DefaultPort is the port the web process binds when the descriptor leaves it
	// unset (the value the deployed variants have always used).
	DefaultPort = 3210
	// DefaultWorkers is the worker-process count used when the descriptor leaves
	// it unset.
	DefaultWorkers = 4
)

var (
	// ErrUnpinnedBaseImage is returned when a base image reference has no tag or
	// floats on "latest". Builds must be reproducible, so the tag is mandatory.
	ErrUnpinnedBaseImage = errors.New("base image is not pinned to a version tag")

	// ErrInvalidSpec is the sentinel wrapped by all other BuildSpec validation
	// failures.
	ErrInvalidSpec = errors.New("invalid build spec")
)

// BuildSpec describes how to assemble one immutable application image: the
// pinned base runtime, the fixed working directory, and the three build-time
// inputs (dependency manifest, source tree, environment file) resolved relative
// to ContextDir. Port and Workers are baked into the image as launch defaults;
// a deployment may override them without rebuilding (see ServerConfig).
//
// SourceDir is the one field that historically drifted between environment
// variants ("src" vs "app"); keeping it a parameter of a single spec replaces
// the duplicated descriptors.
type BuildSpec struct {
	Name      string `yaml:"name" json:"name"`
	BaseImage string `yaml:"base_image" json:"base_image"`
	WorkDir   string `yaml:"workdir" json:"workdir"`
	Manifest  string `yaml:"manifest" json:"manifest"`
	SourceDir string `yaml:"source_dir" json:"source_dir"`
	EnvFile   string `yaml:"env_file" json:"env_file"`
	Module    string `yaml:"module" json:"module"`
	Port      int    `yaml:"port" json:"port"`
	Workers   int    `yaml:"workers" json:"workers"`
	Tag       string `yaml:"tag" json:"tag"`

	// ContextDir is the directory the relative input paths resolve against.
	// It is set by the descriptor loader (or the git fetcher), never serialized.
	ContextDir string `yaml:"-" json:"-"`
}

// ApplyDefaults fills the optional fields a descriptor may omit.
func (s *BuildSpec) ApplyDefaults() {
	if s.WorkDir == "" {
		s.WorkDir = DefaultWorkDir
	}
	if s.Port == 0 {
		s.Port = DefaultPort
	}
	if s.Workers == 0 {
		s.Workers = DefaultWorkers
	}
	if s.Tag == "" && s.Name != "" {
		s.Tag = s.Name + ":latest"
	}
}

// Validate checks the spec is complete enough to build from. It does not touch
// the filesystem; existence of the input paths is the builder's pre-flight
// concern.
func (s *BuildSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSpec)
	}
	if s.BaseImage == "" {
		return fmt.Errorf("%w: base_image is required", ErrInvalidSpec)
	}
	if !baseImagePinned(s.BaseImage) {
		return fmt.Errorf("%w: %q", ErrUnpinnedBaseImage, s.BaseImage)
	}
	if s.Manifest == "" {
		return fmt.Errorf("%w: manifest is required", ErrInvalidSpec)
	}
	if s.SourceDir == "" {
		return fmt.Errorf("%w: source_dir is required", ErrInvalidSpec)
	}
	if s.EnvFile == "" {
		return fmt.Errorf("%w: env_file is required", ErrInvalidSpec)
	}
	if s.Module == "" {
		return fmt.Errorf("%w: module is required", ErrInvalidSpec)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidSpec, s.Port)
	}
	if s.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidSpec)
	}
	return nil
}

// Defaults returns the launch parameters baked into images built from this spec.
func (s *BuildSpec) Defaults() ServerConfig {
	return ServerConfig{Port: s.Port, Workers: s.Workers}
}

// baseImagePinned reports whether ref carries an explicit, non-floating tag.
// The tag separator must come after the last path segment so registry ports
// (registry:5000/python) don't count as tags.
func baseImagePinned(ref string) bool {
	name := ref
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		name = ref[i+1:]
	}
	i := strings.LastIndex(name, ":")
	if i < 0 {
		return false
	}
	tag := name[i+1:]
	return tag != "" && tag != "latest"
}

// ServerConfig carries the launch-time process topology: which TCP port the
// server binds and how many worker processes it spawns. A zero field means
// "use the value baked into the image", so the zero ServerConfig reproduces
// the image's defaults exactly.
type ServerConfig struct {
	Port    int `json:"port"`
	Workers int `json:"workers"`
}

// Merge fills zero fields from the image's baked defaults and returns the
// effective configuration.
func (c ServerConfig) Merge(defaults ServerConfig) ServerConfig {
	if c.Port == 0 {
		c.Port = defaults.Port
	}
	if c.Workers == 0 {
		c.Workers = defaults.Workers
	}
	return c
}

// IsZero reports whether the config overrides nothing.
func (c ServerConfig) IsZero() bool {
	return c.Port == 0 && c.Workers == 0
}
