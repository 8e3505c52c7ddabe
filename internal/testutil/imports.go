// Package testutil holds test helpers that keep package dependencies in
// check.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ImportRule rejects import paths matched by Match.
type ImportRule struct {
	Reason string
	Match  func(importPath string) bool
}

// Under matches prefix and every package below it.
func Under(prefix string) func(string) bool {
	return func(p string) bool { return p == prefix || strings.HasPrefix(p, prefix+"/") }
}

// AnyInternal matches any path with an internal/ element.
func AnyInternal(p string) bool {
	return strings.Contains(p, "/internal/") || strings.HasPrefix(p, "internal/")
}

// Fataler is the subset of testing.TB the assertions need.
type Fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

// ForbidImports fails t when a non-test file in dir imports a path matched by
// one of rules.
func ForbidImports(t Fataler, dir string, rules ...ImportRule) {
	t.Helper()
	viols, err := ImportViolations(dir, rules...)
	if err != nil {
		t.Fatalf("scan %s: %v", dir, err)
	}
	if len(viols) > 0 {
		t.Fatalf("forbidden imports in %s:\n%s", dir, strings.Join(viols, "\n"))
	}
}

// ImportViolations lists "<path> (<file>): <reason>" for every forbidden
// import of the non-test files in dir, sorted.
func ImportViolations(dir string, rules ...ImportRule) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range file.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				return nil, err
			}
			for _, r := range rules {
				if r.Match(path) {
					viols = append(viols, path+" ("+name+"): "+r.Reason)
				}
			}
		}
	}
	sort.Strings(viols)
	return viols, nil
}
