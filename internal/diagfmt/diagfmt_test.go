package diagfmt

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lazyres/internal/diag"
	"lazyres/internal/source"
)

func fixture(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "t.yaml")
	if err := os.WriteFile(path, []byte("package: p\ndecls:\n  - fun: a\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSetWithBase(dir)
	id := fs.Add(path)

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.ResInternalError, source.Span{File: id, Line: 3, Col: 5}, "boom").
		WithNote(source.Span{File: id, Line: 1, Col: 1}, "package here"))
	bag.Add(diag.New(diag.SevWarning, diag.ProjImportCycle, source.Span{File: id}, "cycle"))
	return bag, fs
}

func TestPrettyPrintsContext(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 2, PathMode: PathModeBasename, ShowNotes: true})

	want := strings.Join([]string{
		"t.yaml:3:5: ERROR " + diag.ResInternalError.ID() + ": boom",
		" 2 | decls:",
		" 3 |   - fun: a",
		"   |     ^",
		"  note: t.yaml:1:1: package here",
		"t.yaml: WARNING " + diag.ProjImportCycle.ID() + ": cycle",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyWithoutNotesOrContext(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Fatalf("got %d lines:\n%s", got, buf.String())
	}
	if strings.Contains(buf.String(), "note") {
		t.Fatalf("notes shown:\n%s", buf.String())
	}
}

func TestJSONOutput(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeRelative, Max: 1}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Severity != "ERROR" || d.Location.File != "t.yaml" || d.Location.Line != 3 || d.Location.Col != 5 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if len(d.Notes) != 0 {
		t.Fatalf("notes without IncludeNotes: %+v", d.Notes)
	}
}

func TestSarifOutput(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	err := Sarif(&buf, bag, fs, SarifRunMeta{ToolName: "lazyres", ToolVersion: "0.1.0", InvocationArgs: []string{"resolve", "t.yaml"}})
	if err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("decode: %v", err)
	}
	run := log.Runs[0]
	if log.Version != "2.1.0" || len(run.Results) != 2 || len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("log = %+v", log)
	}
	if r := run.Results[0]; r.Level != "error" || r.Locations[0].PhysicalLocation.Region.StartLine != 3 {
		t.Fatalf("result = %+v", r)
	}
	if r := run.Results[1]; r.Level != "warning" || r.Locations[0].PhysicalLocation.Region != nil {
		t.Fatalf("result = %+v", r)
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("invocation should fail with errors")
	}
}
