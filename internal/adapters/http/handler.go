package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/baris/shipyard/internal/core/domain"
	"github.com/baris/shipyard/internal/core/ports"
	"github.com/baris/shipyard/internal/specfile"
)

// Handler exposes builds and deployments over the API.
type Handler struct {
	service ports.ContainerService
	builder ports.BuilderService
	specs   *specfile.File
}

func NewHandler(service ports.ContainerService, builder ports.BuilderService, specs *specfile.File) *Handler {
	return &Handler{service: service, builder: builder, specs: specs}
}

// Register mounts the API routes.
func (h *Handler) Register(app *fiber.App) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	builds := v1.Group("/builds")
	builds.Post("/", h.StartBuild)
	builds.Get("/", h.ListBuilds)
	builds.Get("/:id", h.GetBuild)

	v1.Post("/deployments", h.Deploy)

	containers := v1.Group("/containers")
	containers.Get("/", h.ListContainers)
	containers.Delete("/:id", h.StopContainer)
	containers.Get("/:id/logs", h.GetContainerLogs)
}

type StartBuildRequest struct {
	Variant string `json:"variant"`
	RepoURL string `json:"repo_url,omitempty"`
	Tag     string `json:"tag,omitempty"`
}

func (h *Handler) StartBuild(c *fiber.Ctx) error {
	var req StartBuildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	spec := h.specs.Default()
	if req.Variant != "" {
		var ok bool
		spec, ok = h.specs.Variant(req.Variant)
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Unknown variant: " + req.Variant,
			})
		}
	}
	if req.Tag != "" {
		spec.Tag = req.Tag
	}

	// Blocking: builds can take a while. A background job queue would be the
	// next step if concurrent API builds become a real workload.
	var (
		build *domain.Build
		err   error
	)
	if req.RepoURL != "" {
		build, err = h.builder.BuildFromRepo(c.Context(), req.RepoURL, spec)
	} else {
		build, err = h.builder.BuildImage(c.Context(), spec)
	}
	if err != nil {
		status := fiber.StatusInternalServerError
		if isInputError(err) {
			status = fiber.StatusBadRequest
		}
		body := fiber.Map{"error": err.Error()}
		if build != nil {
			body["build"] = build
		}
		return c.Status(status).JSON(body)
	}

	return c.Status(fiber.StatusCreated).JSON(build)
}

func (h *Handler) ListBuilds(c *fiber.Ctx) error {
	return c.JSON(h.builder.ListBuilds())
}

func (h *Handler) GetBuild(c *fiber.Ctx) error {
	build, ok := h.builder.GetBuild(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Build not found",
		})
	}
	return c.JSON(build)
}

type DeployRequest struct {
	Image   string `json:"image"`
	Name    string `json:"name,omitempty"`
	Port    int    `json:"port,omitempty"`
	Workers int    `json:"workers,omitempty"`
}

func (h *Handler) Deploy(c *fiber.Ctx) error {
	var req DeployRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image is required",
		})
	}

	cfg := domain.ServerConfig{Port: req.Port, Workers: req.Workers}
	containerID, err := h.service.LaunchContainer(c.Context(), req.Image, req.Name, cfg)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    containerID,
		"image": req.Image,
	})
}

func (h *Handler) ListContainers(c *fiber.Ctx) error {
	containers, err := h.service.ListContainers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(containers)
}

func (h *Handler) StopContainer(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	if err := h.service.StopContainer(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) GetContainerLogs(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	logs, err := h.service.GetContainerLogs(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "text/plain")
	return c.SendStream(logs)
}

// isInputError reports whether err is the caller's fault: an invalid spec or
// a build input missing from the context.
func isInputError(err error) bool {
	return errors.Is(err, domain.ErrInvalidSpec) ||
		errors.Is(err, domain.ErrUnpinnedBaseImage) ||
		errors.Is(err, domain.ErrManifestMissing) ||
		errors.Is(err, domain.ErrSourceMissing) ||
		errors.Is(err, domain.ErrEnvFileMissing)
}
