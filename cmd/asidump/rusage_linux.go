//go:build linux

package main

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// reportRusage prints peak RSS for the current process, the way
// gocore_test.go uses unix.Getrlimit/Setrlimit around core generation
// rather than shelling out to a separate profiling tool.
func reportRusage(w io.Writer) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		fmt.Fprintf(w, "rusage: %v\n", err)
		return
	}
	fmt.Fprintf(w, "peak RSS: %.1f MB\n", float64(ru.Maxrss)/1024)
}
