package dsl

import (
	"errors"
	"testing"

	"github.com/flowbase/dagctl/pkg/config"
	"github.com/flowbase/dagctl/pkg/task"
	"github.com/flowbase/dagctl/pkg/uri"
)

func TestLoad_Valid(t *testing.T) {
	doc := []byte(`{
		"handler": "thread",
		"tasks": [
			{"uri": "task://build", "outputs": ["file://bin"], "command": ["make", "build"]}
		]
	}`)

	def, err := Load(doc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if def.Handler != "thread" {
		t.Errorf("expected handler thread, got %s", def.Handler)
	}
	if len(def.Tasks) != 1 || def.Tasks[0].URI != "task://build" {
		t.Fatalf("unexpected tasks: %+v", def.Tasks)
	}
}

func TestLoad_SchemaInvalid(t *testing.T) {
	doc := []byte(`{"handler": "thread", "tasks": [{"slots": 1}]}`)

	_, err := Load(doc)
	if err == nil {
		t.Fatal("expected schema validation error for task missing uri")
	}
	var schemaErr *ErrSchemaValidation
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *ErrSchemaValidation, got %T: %v", err, err)
	}
	if len(schemaErr.Errors) == 0 {
		t.Fatal("expected at least one schema error")
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	_, err := Load([]byte(`{not json`))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestLoad_UnknownHandlerRejectedBySchema(t *testing.T) {
	doc := []byte(`{"handler": "goroutine", "tasks": [{"uri": "task://a"}]}`)
	_, err := Load(doc)
	if err == nil {
		t.Fatal("expected schema validation error for unknown handler enum value")
	}
}

func TestBuild_SerialDefault(t *testing.T) {
	def := &Definition{
		Tasks: []TaskDef{
			{URI: "task://a"},
		},
	}
	w, err := Build(def, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if w == nil {
		t.Fatal("expected non-nil workflow")
	}
}

func TestBuild_ThreadHandlerWithCommand(t *testing.T) {
	def := &Definition{
		Handler: "thread",
		Tasks: []TaskDef{
			{URI: "task://a", Outputs: []string{"file://out"}, Command: []string{"echo", "hi"}},
		},
	}
	w, err := Build(def, config.Testing(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(w.OutputObjects()) != 1 || w.OutputObjects()[0] != uri.URI("file://out") {
		t.Fatalf("expected output file://out wired, got %v", w.OutputObjects())
	}
}

func TestBuild_ProcessHandlerRequiresCommand(t *testing.T) {
	def := &Definition{
		Handler: "process",
		Tasks: []TaskDef{
			{URI: "task://a", Kind: "process-safe"},
		},
	}
	_, err := Build(def, config.Testing(), nil)
	var missing *ErrMissingCommand
	if !errors.As(err, &missing) {
		t.Fatalf("expected *ErrMissingCommand, got %T: %v", err, err)
	}
}

func TestBuild_UnknownHandler(t *testing.T) {
	def := &Definition{
		Handler: "gizmo",
		Tasks:   []TaskDef{{URI: "task://a"}},
	}
	_, err := Build(def, nil, nil)
	if !errors.Is(err, ErrUnknownHandler) {
		t.Fatalf("expected ErrUnknownHandler, got %v", err)
	}
}

func TestBuild_KindParsing(t *testing.T) {
	tk := buildTaskKind(t, "thread-safe")
	if tk != task.KindThreadSafe {
		t.Errorf("expected KindThreadSafe, got %v", tk)
	}
	tk = buildTaskKind(t, "")
	if tk != task.KindAny {
		t.Errorf("expected KindAny for empty string, got %v", tk)
	}
}

func buildTaskKind(t *testing.T, s string) task.Kind {
	t.Helper()
	return parseKind(s)
}
