// Package health reports process and session state for the running service.
package health

import (
	"runtime"
	"time"
)

// SessionLister is the part of the session registry a snapshot needs.
type SessionLister interface {
	Keys() []string
}

// Options selects what Collect inspects.
type Options struct {
	Sessions  SessionLister
	Channels  []string
	ExportDir string
	Now       func() time.Time
}

func (o Options) normalize() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Snapshot is the health report.
type Snapshot struct {
	Status     string       `json:"status"`
	Goroutines int          `json:"goroutines"`
	Memory     MemoryInfo   `json:"memory"`
	Runtime    RuntimeInfo  `json:"runtime"`
	Sessions   SessionsInfo `json:"sessions"`
	Channels   []string     `json:"channels"`
	Exports    *ExportsInfo `json:"exports,omitempty"`
	Timestamp  string       `json:"timestamp"`
}

type MemoryInfo struct {
	AllocMB      float64 `json:"allocMB"`
	TotalAllocMB float64 `json:"totalAllocMB"`
	SysMB        float64 `json:"sysMB"`
	NumGC        uint32  `json:"numGC"`
}

type RuntimeInfo struct {
	Version string `json:"version"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
	CPUs    int    `json:"cpus"`
}

// SessionsInfo counts live sessions per channel.
type SessionsInfo struct {
	Total     int            `json:"total"`
	ByChannel map[string]int `json:"byChannel"`
}

// Collect returns a health snapshot for the current process.
func Collect(opts Options) Snapshot {
	opts = opts.normalize()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s := Snapshot{
		Status:     "healthy",
		Goroutines: runtime.NumGoroutine(),
		Memory: MemoryInfo{
			AllocMB:      float64(mem.Alloc) / 1024 / 1024,
			TotalAllocMB: float64(mem.TotalAlloc) / 1024 / 1024,
			SysMB:        float64(mem.Sys) / 1024 / 1024,
			NumGC:        mem.NumGC,
		},
		Runtime: RuntimeInfo{
			Version: runtime.Version(),
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
			CPUs:    runtime.NumCPU(),
		},
		Sessions:  countSessions(opts.Sessions),
		Channels:  append([]string{}, opts.Channels...),
		Timestamp: opts.Now().Format(time.RFC3339),
	}

	if opts.ExportDir != "" {
		s.Exports = inspectExportDir(opts.ExportDir)
	}
	return s
}
