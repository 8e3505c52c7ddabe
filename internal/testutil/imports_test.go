package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recorder struct {
	msg string
}

func (r *recorder) Helper() {}
func (r *recorder) Fatalf(format string, args ...any) {
	r.msg = fmt.Sprintf(format, args...)
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package x\n\nimport (\n\t\"fmt\"\n\t\"example.com/m/internal/core\"\n)\n\nvar _ = fmt.Sprint\nvar _ = core.X\n")
	writeFile(t, dir, "a_test.go", "package x\n\nimport \"example.com/m/internal/infra/blob\"\n")
	writeFile(t, dir, "notes.txt", "import \"internal/x\"")

	viols, err := ImportViolations(dir, ImportRule{Reason: "no internals", Match: AnyInternal})
	if err != nil {
		t.Fatalf("ImportViolations: %v", err)
	}
	if len(viols) != 1 || viols[0] != "example.com/m/internal/core (a.go): no internals" {
		t.Fatalf("unexpected violations %v", viols)
	}

	var rec recorder
	ForbidImports(&rec, dir, ImportRule{Reason: "core is off limits", Match: Under("example.com/m/internal/core")})
	if !strings.Contains(rec.msg, "core is off limits") {
		t.Fatalf("expected failure, got %q", rec.msg)
	}
	rec = recorder{}
	ForbidImports(&rec, dir, ImportRule{Reason: "x", Match: Under("example.com/m/internal/co")})
	if rec.msg != "" {
		t.Fatalf("prefix must match whole path elements, got %q", rec.msg)
	}
}

func TestImportViolationsMissingDir(t *testing.T) {
	var rec recorder
	ForbidImports(&rec, filepath.Join(t.TempDir(), "missing"))
	if !strings.HasPrefix(rec.msg, "scan ") {
		t.Fatalf("expected scan failure, got %q", rec.msg)
	}
}
