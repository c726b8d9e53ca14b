package models

// ProjectPackage is a dependency declared in the manifest.
type ProjectPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ProjectFeature groups the dependencies declared for one feature.
type ProjectFeature struct {
	Name      string           `json:"name"`
	IsDefault bool             `json:"is_default"`
	Packages  []ProjectPackage `json:"packages"`
}

// ProjectEnvironment is a named combination of features.
type ProjectEnvironment struct {
	Name           string   `json:"name"`
	Features       []string `json:"features"`
	InheritDefault bool     `json:"inherit_default"`
	SolveGroup     string   `json:"solve_group,omitempty"`
}

// ProjectInfo summarizes a pixi manifest.
type ProjectInfo struct {
	IsPixiProject bool                 `json:"is_pixi_project"`
	Name          string               `json:"name,omitempty"`
	Environments  []ProjectEnvironment `json:"environments"`
	Features      []ProjectFeature     `json:"features"`
	Tasks         []string             `json:"tasks"`
}
