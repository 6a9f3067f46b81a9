package ports

import (
	"context"

	"github.com/baris/shipyard/internal/core/domain"
)

// BuilderService defines operations for producing immutable images from a
// build spec. A build either yields exactly one tagged image or fails with no
// artifact recorded against the spec's tag.
type BuilderService interface {
	// BuildImage runs the layered build pipeline for spec, resolving input
	// paths against spec.ContextDir.
	BuildImage(ctx context.Context, spec domain.BuildSpec) (*domain.Build, error)

	// BuildFromRepo shallow-clones repoURL and runs the same pipeline with the
	// clone as the build context.
	BuildFromRepo(ctx context.Context, repoURL string, spec domain.BuildSpec) (*domain.Build, error)

	// GetBuild returns a previously recorded build by ID.
	GetBuild(id string) (*domain.Build, bool)

	// ListBuilds returns all recorded builds, newest first.
	ListBuilds() []*domain.Build
}
