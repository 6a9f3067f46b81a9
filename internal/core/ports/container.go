package ports

import (
	"context"
	"io"

	"github.com/baris/shipyard/internal/core/domain"
)

// ContainerService defines the core operations for launching and managing
// containers. This interface allows us to switch between Docker, Podman, or
// Kubernetes without changing the business logic.
type ContainerService interface {
	ListContainers(ctx context.Context) ([]domain.Container, error)

	// LaunchContainer creates and starts a container from image under the given
	// name. Zero fields in cfg fall back to the port and worker count baked
	// into the image at build time; non-zero fields override them for this
	// launch only, without rebuilding the image.
	LaunchContainer(ctx context.Context, image, name string, cfg domain.ServerConfig) (string, error)

	StopContainer(ctx context.Context, id string) error
	GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error)
}
