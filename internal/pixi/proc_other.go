//go:build !unix

package pixi

import "os/exec"

func killProcessGroup(cmd *exec.Cmd) {}
