// Package models defines data models for package installs and project metadata.
package models

import "time"

// InstallStatus represents the status of a package install run.
type InstallStatus string

const (
	// InstallRunning indicates the package manager has been started.
	InstallRunning InstallStatus = "running"
	// InstallSuccess indicates the package manager exited with code 0.
	InstallSuccess InstallStatus = "success"
	// InstallFailed indicates a non-zero exit or an invocation error.
	InstallFailed InstallStatus = "failed"
)

// AddPackageRequest is the body of an add-package call.
type AddPackageRequest struct {
	Package string `json:"package"`
	Feature string `json:"feature"`
}

// Valid reports whether both fields are present.
func (r *AddPackageRequest) Valid() bool {
	return r.Package != "" && r.Feature != ""
}

// AddPackageResult is the outcome of a completed package manager run.
type AddPackageResult struct {
	Success bool
	Output  string
	Error   string
}

// Install is a recorded add-package run.
type Install struct {
	CreatedAt  time.Time     `json:"created_at"`
	ExitCode   *int          `json:"exit_code"`
	StartedAt  *time.Time    `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at"`
	ID         string        `json:"id"`
	Package    string        `json:"package"`
	Feature    string        `json:"feature"`
	Status     InstallStatus `json:"status"`
	Output     string        `json:"output"`
	Error      string        `json:"error"`
}
