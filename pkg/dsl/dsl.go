package dsl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/xeipuuv/gojsonschema"

	"github.com/flowbase/dagctl/pkg/config"
	"github.com/flowbase/dagctl/pkg/task"
	"github.com/flowbase/dagctl/pkg/uri"
	"github.com/flowbase/dagctl/pkg/workflow"
)

// TaskDef is one task entry in a workflow definition document.
type TaskDef struct {
	URI      string   `json:"uri"`
	Kind     string   `json:"kind,omitempty"`
	Slots    int      `json:"slots,omitempty"`
	Inputs   []string `json:"inputs,omitempty"`
	Outputs  []string `json:"outputs,omitempty"`
	Mutables []string `json:"mutables,omitempty"`
	Command  []string `json:"command,omitempty"`
}

// Definition is a parsed, schema-valid workflow definition document.
type Definition struct {
	Handler string    `json:"handler,omitempty"`
	Tasks   []TaskDef `json:"tasks"`
}

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// Load validates data against the embedded schema and unmarshals it into a
// Definition. Schema validation runs first so a malformed document is
// rejected with field-level errors rather than a generic unmarshal failure.
func Load(data []byte) (*Definition, error) {
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			errs = append(errs, e.String())
		}
		return nil, &ErrSchemaValidation{Errors: errs}
	}

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow definition: %w", err)
	}
	return &def, nil
}

// Build constructs a ready-to-run *workflow.Workflow from def: it picks the
// handler named by def.Handler (defaulting to "serial"), wires every task's
// inputs/outputs/mutables as data-object edges, and wraps each task's
// command as both a worker.Handler-style Command (for process-pool
// execution) and a synchronous Body (for thread-pool or serial execution).
func Build(def *Definition, cfg *config.Config, logger *slog.Logger) (*workflow.Workflow, error) {
	var w *workflow.Workflow
	switch def.Handler {
	case "", "serial":
		w = workflow.NewSerialWorkflow(logger)
	case "thread":
		if cfg == nil {
			cfg = config.Default()
		}
		w = workflow.NewThreadWorkflow(cfg, logger)
	case "process":
		if cfg == nil {
			cfg = config.Default()
		}
		w = workflow.NewProcessWorkflow(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandler, def.Handler)
	}

	for _, td := range def.Tasks {
		t, err := buildTask(td)
		if err != nil {
			return nil, err
		}
		if err := w.AddTask(t); err != nil {
			return nil, fmt.Errorf("task %s: %w", td.URI, err)
		}
	}

	return w, nil
}

func buildTask(td TaskDef) (*task.Task, error) {
	t := task.New(uri.URI(td.URI))
	t.Kind = parseKind(td.Kind)
	if td.Slots > 0 {
		t.Slots = td.Slots
	}
	t.Inputs = toSet(td.Inputs)
	t.Outputs = toSet(td.Outputs)
	t.Mutables = toSet(td.Mutables)

	if len(td.Command) == 0 {
		if t.Kind == task.KindProcessSafe {
			return nil, &ErrMissingCommand{URI: td.URI}
		}
		return t, nil
	}

	name := td.Command[0]
	args := td.Command[1:]

	t.Command = func(ctx context.Context) *exec.Cmd {
		return exec.CommandContext(ctx, name, args...)
	}
	t.Body = func(ctx context.Context, started task.Started) error {
		cmd := exec.CommandContext(ctx, name, args...)
		started(true)
		return cmd.Run()
	}

	return t, nil
}

func parseKind(s string) task.Kind {
	switch s {
	case "thread-safe":
		return task.KindThreadSafe
	case "process-safe":
		return task.KindProcessSafe
	default:
		return task.KindAny
	}
}

func toSet(uris []string) task.Set {
	out := make([]uri.URI, len(uris))
	for i, u := range uris {
		out[i] = uri.URI(u)
	}
	return task.NewSet(out...)
}
