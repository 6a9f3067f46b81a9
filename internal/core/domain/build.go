package domain

import (
	"errors"
	"time"
)

// Build-phase contract errors. A build aborts on the first one encountered
// and records no artifact.
var (
	// ErrManifestMissing is returned when the dependency manifest is absent
	// from the build context.
	ErrManifestMissing = errors.New("dependency manifest not found")

	// ErrSourceMissing is returned when the source directory is absent from
	// the build context.
	ErrSourceMissing = errors.New("source directory not found")

	// ErrEnvFileMissing is returned when the environment file is absent from
	// the build context.
	ErrEnvFileMissing = errors.New("environment file not found")

	// ErrBuildFailed is returned when the engine reports a failing build step
	// (dependency install failure, bad instruction). No image is produced.
	ErrBuildFailed = errors.New("image build failed")
)

// BuildStatus is the lifecycle state of one build execution.
type BuildStatus string

const (
	BuildStatusRunning   BuildStatus = "running"
	BuildStatusSucceeded BuildStatus = "succeeded"
	BuildStatusFailed    BuildStatus = "failed"
)

// Build records one execution of the image pipeline. A failed build produces
// no usable artifact: Image is only meaningful when Status is succeeded.
type Build struct {
	ID         string      `json:"id"`
	Spec       BuildSpec   `json:"spec"`
	Image      string      `json:"image,omitempty"`
	Status     BuildStatus `json:"status"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at,omitempty"`
}
