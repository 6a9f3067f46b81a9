// Package dockerfile renders a domain.BuildSpec into the instruction sequence
// for a layered image build. The layer order is load-bearing: the dependency
// manifest is copied and installed before the source tree, so the install
// layer's cache key depends on the manifest alone and source edits never force
// a dependency reinstall.
package dockerfile

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"text/template"

	"github.com/baris/shipyard/internal/core/domain"
)

// Name is the file name the rendered instructions are written under inside the
// build context.
const Name = "Dockerfile"

// Image labels carrying the baked launch defaults. The launcher reads these
// back at deploy time so overrides can be merged without re-reading the spec.
const (
	LabelModule  = "shipyard.module"
	LabelPort    = "shipyard.port"
	LabelWorkers = "shipyard.workers"
)

const fileTemplate = `FROM {{.BaseImage}}

WORKDIR {{.WorkDir}}

COPY {{.Manifest}} ./
RUN pip install --no-cache-dir -r {{.Manifest}}

COPY {{.SourceDir}}/ ./{{.SourceDir}}/
COPY {{.EnvFile}} ./

LABEL {{.LabelModule}}={{printf "%q" .Module}} \
      {{.LabelPort}}="{{.Port}}" \
      {{.LabelWorkers}}="{{.Workers}}"

EXPOSE {{.Port}}

CMD [{{.Command}}]
`

var tmpl = template.Must(template.New(Name).Parse(fileTemplate))

type templateData struct {
	BaseImage string
	WorkDir   string
	Manifest  string
	SourceDir string
	EnvFile   string
	Module    string
	Port      int
	Workers   int
	Command   string

	LabelModule  string
	LabelPort    string
	LabelWorkers string
}

// Render produces the build instructions for spec. Output is deterministic:
// identical specs render byte-identical files, so unchanged layers stay
// cache-hittable across rebuilds. Input paths are reduced to their base names
// because the builder stages all inputs flat at the context root.
func Render(spec domain.BuildSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", fmt.Errorf("cannot render build instructions: %w", err)
	}

	data := templateData{
		BaseImage: spec.BaseImage,
		WorkDir:   spec.WorkDir,
		Manifest:  path.Base(spec.Manifest),
		SourceDir: path.Base(path.Clean(spec.SourceDir)),
		EnvFile:   path.Base(spec.EnvFile),
		Module:    spec.Module,
		Port:      spec.Port,
		Workers:   spec.Workers,
		Command:   quoteJSONArgs(LaunchCommand(spec.Module, spec.Defaults())),

		LabelModule:  LabelModule,
		LabelPort:    LabelPort,
		LabelWorkers: LabelWorkers,
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render build instructions: %w", err)
	}
	return b.String(), nil
}

// LaunchCommand is the exec-form command that starts the web server: module
// path, worker count and port as fixed arguments. It is shared between the
// baked CMD and the launcher's runtime override so the two can never drift.
func LaunchCommand(module string, cfg domain.ServerConfig) []string {
	return []string{
		"uvicorn", module,
		"--host", "0.0.0.0",
		"--port", strconv.Itoa(cfg.Port),
		"--workers", strconv.Itoa(cfg.Workers),
	}
}

func quoteJSONArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = strconv.Quote(a)
	}
	return strings.Join(quoted, ", ")
}
