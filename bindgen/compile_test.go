package bindgen

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/tangara/builder"
	"github.com/wippyai/tangara/meta"
)

// geoPackage describes testdata/fixture/geo.
func geoPackage(t *testing.T) *meta.Package {
	t.Helper()
	pkg := builder.NewPackage("Geo")
	_, err := pkg.Class("Shape").
		Constructor().Arg(tDouble, "size").Build().
		Constructor().Arg(tDouble, "w").Arg(tDouble, "h").Build().
		Method("area").Returns(tDouble).Build().
		Method("grow").Arg(tInt, "n").Returns(tInt).Build().
		Method("grow").Arg(tDouble, "x").Returns(tDouble).Build().
		Method("create").Static().Returns(meta.Name("Shape")).Build().
		Property(tString, "label").ReadWrite().Build().
		Field(meta.Name("Shape"), "inner").Build().
		StaticField(tInt, "count").Build().
		Build()
	require.NoError(t, err)
	lib, err := pkg.Build()
	require.NoError(t, err)
	return lib
}

// TestGeneratedCodeRuns generates glue and bindings for the fixture
// library, then builds and runs the fixture's own tests against them.
func TestGeneratedCodeRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a module")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not found")
	}
	root, err := filepath.Abs("..")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, copyTree(filepath.Join("testdata", "fixture"), dir))

	modFile := strings.Join([]string{
		"module example.com/fixture",
		"",
		"go 1.25",
		"",
		"require github.com/wippyai/tangara v0.0.0",
		"",
		"replace github.com/wippyai/tangara => " + filepath.ToSlash(root),
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(modFile), 0o644))
	sum, err := os.ReadFile(filepath.Join(root, "go.sum"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.sum"), sum, 0o644))

	pkg := geoPackage(t)
	entry, err := New(Config{PackageName: "plugin", LibraryPackage: "example.com/fixture/geo"}).Entrypoint(pkg)
	require.NoError(t, err)
	host, err := New(Config{PackageName: "geobind"}).Bindings(pkg)
	require.NoError(t, err)
	require.NoError(t, WriteFile(filepath.Join(dir, "plugin", "tangara_entry.go"), entry))
	require.NoError(t, WriteFile(filepath.Join(dir, "geobind", "tangara_bindings.go"), host))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(ctx, goBin, "test", "-count=1", "./...")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GOFLAGS=-mod=mod", "GOWORK=off")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "go test in generated module:\n%s\nentrypoint:\n%s\nbindings:\n%s", out, entry, host)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}
