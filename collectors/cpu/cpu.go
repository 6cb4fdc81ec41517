// Package cpu provides the system-wide CPU utilization backends.
//
// Two backends are registered: "gopsutil" (the default, cross-platform,
// including Windows) and "procstat" (Linux /proc/stat). "auto" resolves to
// gopsutil.
package cpu

import (
	"gitlab.com/tinyland/lab/transparency/collectors"
)

const (
	// NameGopsutil is the cross-platform backend.
	NameGopsutil = "gopsutil"
	// NameProcStat is the Linux /proc/stat backend.
	NameProcStat = "procstat"
	// NameAuto selects the platform default.
	NameAuto = "auto"
)

// Register installs every backend in r.
func Register(r *collectors.Registry) {
	r.Register(NameGopsutil, OpenGopsutil)
	r.Register(NameProcStat, OpenProcStat)
	r.Alias(NameAuto, NameGopsutil)
}

// NewRegistry returns a registry with every backend installed.
func NewRegistry() *collectors.Registry {
	r := collectors.NewRegistry()
	Register(r)
	return r
}
