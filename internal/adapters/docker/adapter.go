// Package docker implements ports.ContainerService using the Docker SDK.
package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/strslice"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"github.com/baris/shipyard/internal/core/domain"
	"github.com/baris/shipyard/internal/dockerfile"
)

var (
	// ErrPortInUse is returned when the launch port is already bound on the
	// host. There is no retry and no fallback port.
	ErrPortInUse = errors.New("host port already in use")

	// ErrNoLaunchMetadata is returned when a worker/port override is requested
	// for an image that carries no baked launch defaults to merge against.
	ErrNoLaunchMetadata = errors.New("image carries no launch metadata")
)

// Adapter implements ports.ContainerService using the Docker SDK.
type Adapter struct {
	cli *client.Client
}

// NewAdapter creates a new Docker adapter instance.
func NewAdapter() (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli}, nil
}

// ListContainers returns a list of containers with details.
func (a *Adapter) ListContainers(ctx context.Context) ([]domain.Container, error) {
	containers, err := a.cli.ContainerList(ctx, types.ContainerListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var result []domain.Container
	for _, c := range containers {
		// Use the first name if available, remove slash
		name := ""
		if len(c.Names) > 0 {
			name = c.Names[0][1:]
		}

		result = append(result, domain.Container{
			ID:        c.ID[:12], // Short ID
			Name:      name,
			Image:     c.Image,
			Status:    c.Status,
			State:     c.State,
			IPAddress: firstIPAddress(c),
			Port:      firstPrivatePort(c),
		})
	}
	return result, nil
}

// LaunchContainer creates and starts a container from a locally built image.
// The port and worker count baked into the image at build time act as
// defaults; non-zero fields of cfg override them for this launch only, by
// replacing the image command with one rebuilt from the image's launch
// metadata. The effective port is published one-to-one on the host and a bind
// conflict fails immediately.
func (a *Adapter) LaunchContainer(ctx context.Context, image, name string, cfg domain.ServerConfig) (string, error) {
	module, defaults, err := a.launchMetadata(ctx, image)
	if err != nil {
		return "", err
	}
	if module == "" && !cfg.IsZero() {
		return "", fmt.Errorf("%w: cannot override port/workers for %s", ErrNoLaunchMetadata, image)
	}
	effective := cfg.Merge(defaults)

	port, err := nat.NewPort("tcp", strconv.Itoa(effective.Port))
	if err != nil {
		return "", fmt.Errorf("invalid launch port: %w", err)
	}

	config := &container.Config{
		Image:        image,
		ExposedPorts: nat.PortSet{port: struct{}{}},
	}
	if module != "" && effective != defaults {
		config.Cmd = strslice.StrSlice(dockerfile.LaunchCommand(module, effective))
	}

	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: strconv.Itoa(effective.Port)}},
		},
	}

	resp, err := a.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := a.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		// Best effort: don't leave a named container behind after a failed start.
		if rmErr := a.cli.ContainerRemove(ctx, resp.ID, types.ContainerRemoveOptions{Force: true}); rmErr != nil {
			log.Warn("failed to remove container after start failure", "id", resp.ID, "err", rmErr)
		}
		if isPortConflict(err) {
			return "", fmt.Errorf("%w: %d", ErrPortInUse, effective.Port)
		}
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	log.Info("container started", "id", resp.ID[:12], "image", image,
		"port", effective.Port, "workers", effective.Workers)
	return resp.ID, nil
}

// StopContainer stops a running container.
func (a *Adapter) StopContainer(ctx context.Context, id string) error {
	// Timeout can be configurable, but keeping it simple for now
	timeout := 10 * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.cli.ContainerStop(ctx, id, container.StopOptions{})
}

// GetContainerLogs returns a stream of container logs.
func (a *Adapter) GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error) {
	options := types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     false, // Can be true for streaming
		Timestamps: true,
	}
	return a.cli.ContainerLogs(ctx, id, options)
}

// launchMetadata reads the module path and baked ServerConfig back from the
// image labels written at build time.
func (a *Adapter) launchMetadata(ctx context.Context, image string) (string, domain.ServerConfig, error) {
	inspect, _, err := a.cli.ImageInspectWithRaw(ctx, image)
	if err != nil {
		return "", domain.ServerConfig{}, fmt.Errorf("failed to inspect image %s: %w", image, err)
	}

	defaults := domain.ServerConfig{Port: domain.DefaultPort, Workers: domain.DefaultWorkers}
	module := ""
	if inspect.Config == nil {
		return module, defaults, nil
	}

	labels := inspect.Config.Labels
	module = labels[dockerfile.LabelModule]
	if p, err := strconv.Atoi(labels[dockerfile.LabelPort]); err == nil && p > 0 {
		defaults.Port = p
	}
	if w, err := strconv.Atoi(labels[dockerfile.LabelWorkers]); err == nil && w > 0 {
		defaults.Workers = w
	}
	return module, defaults, nil
}

func isPortConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "port is already allocated") ||
		strings.Contains(msg, "address already in use")
}

func firstIPAddress(c types.Container) string {
	if c.NetworkSettings == nil {
		return ""
	}
	for _, n := range c.NetworkSettings.Networks {
		if n != nil && n.IPAddress != "" {
			return n.IPAddress
		}
	}
	return ""
}

func firstPrivatePort(c types.Container) int {
	for _, p := range c.Ports {
		if p.PrivatePort != 0 {
			return int(p.PrivatePort)
		}
	}
	return 0
}
