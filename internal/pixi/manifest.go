package pixi

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/pandeptwidyaop/pixi-server/internal/models"
)

// DefaultFeature is the feature made of the manifest's top-level dependencies.
const DefaultFeature = "default"

// DefaultEnvironment always exists, whether or not the manifest declares it.
const DefaultEnvironment = "default"

// ReadProject loads the manifest at path. A missing file is not an error: it
// yields a ProjectInfo with IsPixiProject false.
func ReadProject(path string) (*models.ProjectInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return emptyProject(), nil
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	root := doc
	if filepath.Base(path) == "pyproject.toml" {
		root = table(table(doc, "tool"), "pixi")
		if root == nil {
			return emptyProject(), nil
		}
	}

	info := &models.ProjectInfo{
		IsPixiProject: true,
		Name:          projectName(root, doc),
		Features:      features(root),
		Environments:  environments(root),
		Tasks:         tasks(root),
	}
	return info, nil
}

func emptyProject() *models.ProjectInfo {
	return &models.ProjectInfo{
		IsPixiProject: false,
		Environments:  []models.ProjectEnvironment{},
		Features:      []models.ProjectFeature{},
		Tasks:         []string{},
	}
}

func projectName(root, doc map[string]any) string {
	for _, key := range []string{"workspace", "project"} {
		if name, ok := table(root, key)["name"].(string); ok && name != "" {
			return name
		}
	}
	// pyproject.toml keeps the name in the PEP 621 [project] table.
	if name, ok := table(doc, "project")["name"].(string); ok {
		return name
	}
	return ""
}

func features(root map[string]any) []models.ProjectFeature {
	result := []models.ProjectFeature{{
		Name:      DefaultFeature,
		IsDefault: true,
		Packages:  packages(root),
	}}

	named := table(root, "feature")
	for _, name := range sortedKeys(named) {
		if name == DefaultFeature {
			continue
		}
		result = append(result, models.ProjectFeature{
			Name:     name,
			Packages: packages(table(named, name)),
		})
	}
	return result
}

// packages merges conda and PyPI dependencies of a feature table.
func packages(t map[string]any) []models.ProjectPackage {
	deps := map[string]string{}
	for _, key := range []string{"dependencies", "pypi-dependencies"} {
		for name, spec := range table(t, key) {
			if _, seen := deps[name]; seen {
				continue
			}
			deps[name] = versionOf(spec)
		}
	}

	result := make([]models.ProjectPackage, 0, len(deps))
	for _, name := range sortedKeys(deps) {
		result = append(result, models.ProjectPackage{Name: name, Version: deps[name]})
	}
	return result
}

func versionOf(spec any) string {
	switch v := spec.(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		if version, ok := v["version"].(string); ok && version != "" {
			return version
		}
	}
	return "*"
}

func environments(root map[string]any) []models.ProjectEnvironment {
	declared := table(root, "environments")

	result := []models.ProjectEnvironment{environment(DefaultEnvironment, declared[DefaultEnvironment])}
	for _, name := range sortedKeys(declared) {
		if name == DefaultEnvironment {
			continue
		}
		result = append(result, environment(name, declared[name]))
	}
	return result
}

// environment resolves one [environments] entry. Features lists every feature
// the environment is built from, with the default feature first when it is
// inherited.
func environment(name string, spec any) models.ProjectEnvironment {
	env := models.ProjectEnvironment{Name: name, InheritDefault: true}

	var listed []any
	switch v := spec.(type) {
	case []any:
		listed = v
	case map[string]any:
		listed, _ = v["features"].([]any)
		if group, ok := v["solve-group"].(string); ok {
			env.SolveGroup = group
		}
		if noDefault, ok := v["no-default-feature"].(bool); ok {
			env.InheritDefault = !noDefault
		}
	}

	env.Features = []string{}
	if env.InheritDefault {
		env.Features = append(env.Features, DefaultFeature)
	}
	for _, f := range listed {
		feature, ok := f.(string)
		if !ok || feature == "" || feature == DefaultFeature {
			continue
		}
		env.Features = append(env.Features, feature)
	}
	return env
}

func tasks(root map[string]any) []string {
	names := map[string]struct{}{}
	for name := range table(root, "tasks") {
		names[name] = struct{}{}
	}
	for _, feature := range table(root, "feature") {
		f, _ := feature.(map[string]any)
		for name := range table(f, "tasks") {
			names[name] = struct{}{}
		}
	}
	return sortedKeys(names)
}

func table(t map[string]any, key string) map[string]any {
	if t == nil {
		return nil
	}
	sub, _ := t[key].(map[string]any)
	return sub
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
