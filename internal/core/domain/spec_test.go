package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() BuildSpec {
	return BuildSpec{
		Name:      "chat-api",
		BaseImage: "python:3.11-slim",
		WorkDir:   "/app",
		Manifest:  "requirements.txt",
		SourceDir: "src",
		EnvFile:   ".env",
		Module:    "src.main:app",
		Port:      3210,
		Workers:   4,
		Tag:       "chat-api:latest",
	}
}

func TestBuildSpecValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*BuildSpec)
		wantErr error
	}{
		{name: "valid", mutate: func(*BuildSpec) {}},
		{name: "missing name", mutate: func(s *BuildSpec) { s.Name = "" }, wantErr: ErrInvalidSpec},
		{name: "missing base image", mutate: func(s *BuildSpec) { s.BaseImage = "" }, wantErr: ErrInvalidSpec},
		{name: "untagged base image", mutate: func(s *BuildSpec) { s.BaseImage = "python" }, wantErr: ErrUnpinnedBaseImage},
		{name: "latest base image", mutate: func(s *BuildSpec) { s.BaseImage = "python:latest" }, wantErr: ErrUnpinnedBaseImage},
		{name: "registry port is not a tag", mutate: func(s *BuildSpec) { s.BaseImage = "registry:5000/python" }, wantErr: ErrUnpinnedBaseImage},
		{name: "missing manifest", mutate: func(s *BuildSpec) { s.Manifest = "" }, wantErr: ErrInvalidSpec},
		{name: "missing source dir", mutate: func(s *BuildSpec) { s.SourceDir = "" }, wantErr: ErrInvalidSpec},
		{name: "missing env file", mutate: func(s *BuildSpec) { s.EnvFile = "" }, wantErr: ErrInvalidSpec},
		{name: "missing module", mutate: func(s *BuildSpec) { s.Module = "" }, wantErr: ErrInvalidSpec},
		{name: "port too high", mutate: func(s *BuildSpec) { s.Port = 70000 }, wantErr: ErrInvalidSpec},
		{name: "negative port", mutate: func(s *BuildSpec) { s.Port = -1 }, wantErr: ErrInvalidSpec},
		{name: "zero workers", mutate: func(s *BuildSpec) { s.Workers = 0 }, wantErr: ErrInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec := validSpec()
			tt.mutate(&spec)
			err := spec.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v in chain, got %v", tt.wantErr, err)
		})
	}
}

func TestBuildSpecValidate_PinnedRegistryImage(t *testing.T) {
	t.Parallel()
	spec := validSpec()
	spec.BaseImage = "registry.internal:5000/python:3.11-slim"
	require.NoError(t, spec.Validate())
}

func TestBuildSpecApplyDefaults(t *testing.T) {
	t.Parallel()

	spec := BuildSpec{Name: "chat-api"}
	spec.ApplyDefaults()

	assert.Equal(t, "/app", spec.WorkDir)
	assert.Equal(t, 3210, spec.Port)
	assert.Equal(t, 4, spec.Workers)
	assert.Equal(t, "chat-api:latest", spec.Tag)
}

func TestBuildSpecApplyDefaults_KeepsExplicitValues(t *testing.T) {
	t.Parallel()

	spec := validSpec()
	spec.Port = 9000
	spec.Workers = 2
	spec.Tag = "chat-api:v3"
	spec.ApplyDefaults()

	assert.Equal(t, 9000, spec.Port)
	assert.Equal(t, 2, spec.Workers)
	assert.Equal(t, "chat-api:v3", spec.Tag)
}

func TestServerConfigMerge(t *testing.T) {
	t.Parallel()

	defaults := ServerConfig{Port: 3210, Workers: 4}

	tests := []struct {
		name     string
		override ServerConfig
		want     ServerConfig
	}{
		{name: "zero keeps baked defaults", override: ServerConfig{}, want: defaults},
		{name: "port only", override: ServerConfig{Port: 8080}, want: ServerConfig{Port: 8080, Workers: 4}},
		{name: "workers only", override: ServerConfig{Workers: 8}, want: ServerConfig{Port: 3210, Workers: 8}},
		{name: "both", override: ServerConfig{Port: 8080, Workers: 1}, want: ServerConfig{Port: 8080, Workers: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.override.Merge(defaults))
		})
	}
}

func TestServerConfigIsZero(t *testing.T) {
	t.Parallel()
	assert.True(t, ServerConfig{}.IsZero())
	assert.False(t, ServerConfig{Port: 3210}.IsZero())
	assert.False(t, ServerConfig{Workers: 4}.IsZero())
}
