package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

func TestInternalImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"citycore/internal/core", true},
		{"citycore/pkg/domain", false},
	}
	for _, c := range cases {
		if got := InternalImportForbidden(c.in); got != c.want {
			t.Fatalf("InternalImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestThirdPartyImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"encoding/json", false},
		{"citycore/pkg/domain", false},
		{"github.com/spf13/cobra", true},
		{"gopkg.in/yaml.v3", true},
	}
	for _, c := range cases {
		if got := ThirdPartyImportForbidden(c.in); got != c.want {
			t.Fatalf("ThirdPartyImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

type recordingFatal struct {
	msg string
}

func (r *recordingFatal) Fatalf(format string, _ ...any) { r.msg = format }

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	src := "package x\n\nimport (\n\t\"fmt\"\n\t\"citycore/internal/core\"\n)\n\nvar _ = fmt.Sprint\nvar _ core.Store\n"
	if err := os.WriteFile(filepath.Join(dir, "x.go"), []byte(src), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "x_test.go"), []byte("package x\n\nimport \"citycore/internal/blob\"\n"), 0o600); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("directImportViolations: %v", err)
	}
	if len(viols) != 1 || !strings.HasPrefix(viols[0], "citycore/internal/core") {
		t.Fatalf("unexpected violations: %v", viols)
	}
	rec := &recordingFatal{}
	failIfDirectViolations(rec, "reason", viols)
	if rec.msg == "" {
		t.Fatalf("expected fatal on violations")
	}
}

func TestTransitiveDependencyViolationsWalksGraph(t *testing.T) {
	leaf := &packages.Package{PkgPath: "github.com/example/leaf"}
	mid := &packages.Package{PkgPath: "citycore/internal/mid", Imports: map[string]*packages.Package{leaf.PkgPath: leaf}}
	root := &packages.Package{PkgPath: "citycore/pkg/domain", Imports: map[string]*packages.Package{mid.PkgPath: mid, "fmt": {PkgPath: "fmt"}}}

	prev := loadPackages
	loadPackages = func(string) ([]*packages.Package, error) { return []*packages.Package{root}, nil }
	t.Cleanup(func() { loadPackages = prev })

	viols, err := transitiveDependencyViolations("./...", ThirdPartyImportForbidden)
	if err != nil {
		t.Fatalf("transitiveDependencyViolations: %v", err)
	}
	if len(viols) != 1 || viols[0] != leaf.PkgPath {
		t.Fatalf("expected leaf violation, got %v", viols)
	}
	rec := &recordingFatal{}
	failIfTransitiveViolations(rec, "reason", nil)
	if rec.msg != "" {
		t.Fatalf("no violations must not fail")
	}
}
