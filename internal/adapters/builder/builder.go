// Package builder implements ports.BuilderService against the Docker Engine
// API. Each build stages a flat context, renders the layer instructions and
// hands both to the daemon; the daemon's layer cache keys each step by its
// inputs, so the manifest-before-source ordering keeps dependency installs
// reusable across source-only rebuilds.
package builder

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/go-git/go-git/v5"

	"github.com/baris/shipyard/internal/core/domain"
	"github.com/baris/shipyard/internal/dockerfile"
)

// Adapter builds images through a Docker daemon.
type Adapter struct {
	cli    *client.Client
	builds *buildStore
	out    io.Writer
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithOutput redirects the daemon's build progress stream. Defaults to the
// process stderr.
func WithOutput(w io.Writer) Option {
	return func(a *Adapter) { a.out = w }
}

// NewAdapter creates a builder connected to the daemon configured in the
// environment.
func NewAdapter(opts ...Option) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	a := &Adapter{cli: cli, builds: newBuildStore(), out: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// BuildImage runs the full pipeline for spec. Inputs are verified before the
// daemon is involved, so missing files fail fast with their sentinel error; a
// daemon-side failure is recorded on the returned build and wrapped in
// domain.ErrBuildFailed. Either way a failed build records no image.
func (a *Adapter) BuildImage(ctx context.Context, spec domain.BuildSpec) (*domain.Build, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := preflight(spec); err != nil {
		return nil, err
	}

	build := a.builds.begin(spec)
	log.Info("building image", "build", build.ID, "tag", spec.Tag, "variant", spec.Name)

	if err := a.run(ctx, spec); err != nil {
		build = a.builds.finish(build.ID, "", err)
		log.Error("build failed", "build", build.ID, "err", err)
		return &build, err
	}

	build = a.builds.finish(build.ID, spec.Tag, nil)
	log.Info("build succeeded", "build", build.ID, "image", build.Image)
	return &build, nil
}

// BuildFromRepo shallow-clones repoURL and builds with the clone as the
// context directory. The descriptor paths inside spec then resolve against
// the repository root.
func (a *Adapter) BuildFromRepo(ctx context.Context, repoURL string, spec domain.BuildSpec) (*domain.Build, error) {
	tmpDir, err := os.MkdirTemp("", "shipyard-clone-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	log.Info("cloning repository", "url", repoURL)
	_, err = git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
		URL:      repoURL,
		Progress: a.out,
		Depth:    1, // Shallow clone for speed
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone repo: %w", err)
	}

	spec.ContextDir = tmpDir
	return a.BuildImage(ctx, spec)
}

// GetBuild returns a recorded build by ID.
func (a *Adapter) GetBuild(id string) (*domain.Build, bool) {
	b, ok := a.builds.get(id)
	if !ok {
		return nil, false
	}
	return &b, true
}

// ListBuilds returns all recorded builds, newest first.
func (a *Adapter) ListBuilds() []*domain.Build {
	builds := a.builds.list()
	out := make([]*domain.Build, len(builds))
	for i := range builds {
		out[i] = &builds[i]
	}
	return out
}

func (a *Adapter) run(ctx context.Context, spec domain.BuildSpec) error {
	stageDir, err := stageContext(spec)
	if err != nil {
		return err
	}
	defer os.RemoveAll(stageDir)

	buildCtx, err := archive.TarWithOptions(stageDir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("failed to create build context: %w", err)
	}
	defer buildCtx.Close()

	resp, err := a.cli.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Tags:       []string{spec.Tag},
		Dockerfile: dockerfile.Name,
		Remove:     true, // Remove intermediate containers
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBuildFailed, err)
	}
	defer resp.Body.Close()

	// Step failures arrive as error messages inside the JSON stream, not as a
	// transport error, so the stream must be scanned to completion.
	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, a.out, 0, false, nil); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBuildFailed, err)
	}
	return nil
}
