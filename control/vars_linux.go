//go:build linux
// +build linux

// control/vars_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux platform vars.

package control

import (
	"runtime"

	"github.com/momentics/hioload-evio/affinity"
)

// RegisterPlatformVars adds CPU count and the process affinity mask.
func RegisterPlatformVars(p *Vars) {
	p.Register("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	p.Register("platform.affinity", func() any {
		cpus, err := affinity.CurrentCPUs()
		if err != nil {
			return err.Error()
		}
		return cpus
	})
}
