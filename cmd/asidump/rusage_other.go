//go:build !linux

package main

import (
	"fmt"
	"io"
)

func reportRusage(w io.Writer) {
	fmt.Fprintln(w, "rusage: not supported on this platform")
}
