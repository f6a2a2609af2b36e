// pkg/utils/usage.go

package utils

import (
	"syscall"
	"time"
)

var started = time.Now()

// Usage is the CPU time consumed by this process and the wall time since it
// started.
type Usage struct {
	Wall time.Duration
	User time.Duration
	Sys  time.Duration
}

func ResourceUsage() Usage {
	var ru syscall.Rusage
	_ = syscall.Getrusage(syscall.RUSAGE_SELF, &ru)
	return Usage{
		Wall: time.Since(started),
		User: time.Duration(ru.Utime.Nano()),
		Sys:  time.Duration(ru.Stime.Nano()),
	}
}
