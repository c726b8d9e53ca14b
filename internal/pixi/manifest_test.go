package pixi_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pandeptwidyaop/pixi-server/internal/pixi"
)

const sampleManifest = `
[workspace]
name = "analysis"
channels = ["conda-forge"]
platforms = ["linux-64", "osx-arm64"]

[dependencies]
python = "3.11.*"
numpy = ">=1.24"

[pypi-dependencies]
requests = { version = ">=2.31" }
mylib = { path = ".", editable = true }

[tasks]
test = "pytest"
build = { cmd = "python -m build" }

[feature.dev.dependencies]
black = "23.7.*"
pytest = "*"

[feature.dev.tasks]
lint = "black ."

[feature.cuda]
system-requirements = { cuda = "12" }

[feature.cuda.dependencies]
cudatoolkit = "12.*"

[environments]
dev = ["dev"]
gpu = { features = ["cuda"], solve-group = "main" }
minimal = { features = ["dev"], no-default-feature = true }
`

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestReadProject_Missing(t *testing.T) {
	info, err := pixi.ReadProject(filepath.Join(t.TempDir(), "pixi.toml"))
	if err != nil {
		t.Fatalf("missing manifest should not be an error: %v", err)
	}

	if info.IsPixiProject {
		t.Error("expected is_pixi_project false")
	}
	if info.Environments == nil || info.Features == nil || info.Tasks == nil {
		t.Error("expected empty, non-nil lists")
	}
}

func TestReadProject_Invalid(t *testing.T) {
	path := writeManifest(t, "pixi.toml", "[workspace\nname = ")

	if _, err := pixi.ReadProject(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReadProject_Name(t *testing.T) {
	info, err := pixi.ReadProject(writeManifest(t, "pixi.toml", sampleManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !info.IsPixiProject {
		t.Error("expected is_pixi_project true")
	}
	if info.Name != "analysis" {
		t.Errorf("expected name 'analysis', got %q", info.Name)
	}
}

func TestReadProject_LegacyProjectTable(t *testing.T) {
	path := writeManifest(t, "pixi.toml", "[project]\nname = \"legacy\"\n")

	info, err := pixi.ReadProject(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "legacy" {
		t.Errorf("expected name 'legacy', got %q", info.Name)
	}
	if len(info.Environments) != 1 || info.Environments[0].Name != "default" {
		t.Errorf("expected only the implicit default environment, got %+v", info.Environments)
	}
}

func TestReadProject_Features(t *testing.T) {
	info, err := pixi.ReadProject(writeManifest(t, "pixi.toml", sampleManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(info.Features) != 3 {
		t.Fatalf("expected 3 features, got %d: %+v", len(info.Features), info.Features)
	}

	def := info.Features[0]
	if def.Name != "default" || !def.IsDefault {
		t.Errorf("expected default feature first, got %+v", def)
	}

	got := map[string]string{}
	for _, p := range def.Packages {
		got[p.Name] = p.Version
	}
	want := map[string]string{
		"python":   "3.11.*",
		"numpy":    ">=1.24",
		"requests": ">=2.31",
		"mylib":    "*",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("default packages: want %v, got %v", want, got)
	}

	if info.Features[1].Name != "cuda" || info.Features[2].Name != "dev" {
		t.Errorf("expected named features sorted, got %q, %q", info.Features[1].Name, info.Features[2].Name)
	}
	if info.Features[1].IsDefault {
		t.Error("named feature must not be marked default")
	}

	dev := info.Features[2]
	if len(dev.Packages) != 2 || dev.Packages[0].Name != "black" || dev.Packages[1].Name != "pytest" {
		t.Errorf("unexpected dev packages: %+v", dev.Packages)
	}
}

func TestReadProject_Environments(t *testing.T) {
	info, err := pixi.ReadProject(writeManifest(t, "pixi.toml", sampleManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byName := map[string]int{}
	for i, env := range info.Environments {
		byName[env.Name] = i
	}

	if info.Environments[0].Name != "default" {
		t.Fatalf("expected default environment first, got %q", info.Environments[0].Name)
	}
	if !reflect.DeepEqual(info.Environments[0].Features, []string{"default"}) {
		t.Errorf("default environment features: %v", info.Environments[0].Features)
	}

	dev := info.Environments[byName["dev"]]
	if !dev.InheritDefault || !reflect.DeepEqual(dev.Features, []string{"default", "dev"}) {
		t.Errorf("unexpected dev environment: %+v", dev)
	}

	gpu := info.Environments[byName["gpu"]]
	if gpu.SolveGroup != "main" {
		t.Errorf("expected solve group 'main', got %q", gpu.SolveGroup)
	}
	if !reflect.DeepEqual(gpu.Features, []string{"default", "cuda"}) {
		t.Errorf("unexpected gpu features: %v", gpu.Features)
	}

	minimal := info.Environments[byName["minimal"]]
	if minimal.InheritDefault {
		t.Error("expected minimal environment to skip the default feature")
	}
	if !reflect.DeepEqual(minimal.Features, []string{"dev"}) {
		t.Errorf("unexpected minimal features: %v", minimal.Features)
	}
}

func TestReadProject_Tasks(t *testing.T) {
	info, err := pixi.ReadProject(writeManifest(t, "pixi.toml", sampleManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"build", "lint", "test"}
	if !reflect.DeepEqual(info.Tasks, want) {
		t.Errorf("expected tasks %v, got %v", want, info.Tasks)
	}
}

func TestReadProject_Pyproject(t *testing.T) {
	content := `
[project]
name = "pyproj"

[tool.pixi.workspace]
channels = ["conda-forge"]
platforms = ["linux-64"]

[tool.pixi.dependencies]
python = "3.12.*"

[tool.pixi.feature.test.dependencies]
pytest = "*"
`
	info, err := pixi.ReadProject(writeManifest(t, "pyproject.toml", content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !info.IsPixiProject {
		t.Fatal("expected pyproject with [tool.pixi] to be a pixi project")
	}
	if info.Name != "pyproj" {
		t.Errorf("expected name 'pyproj', got %q", info.Name)
	}
	if len(info.Features) != 2 || info.Features[1].Name != "test" {
		t.Errorf("unexpected features: %+v", info.Features)
	}
}

func TestReadProject_PyprojectWithoutPixi(t *testing.T) {
	path := writeManifest(t, "pyproject.toml", "[project]\nname = \"plain\"\n")

	info, err := pixi.ReadProject(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.IsPixiProject {
		t.Error("expected plain pyproject not to be a pixi project")
	}
}
