// filswap swaps two filament/extruder slots of a slicer project and keeps
// the wipe matrix, custom G-code timeline, per-extruder settings and object
// assignments consistent.
//
// Usage:
//
//	filswap --config config.ini [--project project.json] swap A B
//	filswap --config config.ini [--project project.json] show
//	filswap --config config.ini [--project project.json] validate
//
// Slots are numbered from 1 as in the slicer UI; T0, T1, ... are accepted too.
//
// Examples:
//
//	# Swap the first and third filament
//	filswap -c config.ini -p project.json swap 1 3
//
//	# Refuse to swap when the wipe matrix is stale
//	filswap -c config.ini --strict swap T0 T1
//
// Exit status is 0 on success, 2 when a swap is rejected, 3 when config.ini
// is invalid and 1 for any other failure.
package main

import (
	"fmt"
	"io"
	"os"

	"filament-swap/pkg/errors"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitRejected = 2
	exitConfig   = 3
)

func main() {
	os.Exit(execute(os.Args, os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if err := errors.RecoverPanic(recover()); err != nil {
			fmt.Fprintf(stderr, "filswap: %v\n", err)
			code = exitFailure
		}
	}()

	if err := newApp(stdout).Run(args); err != nil {
		fmt.Fprintf(stderr, "filswap: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.IsSwap(err):
		return exitRejected
	case errors.IsConfig(err):
		return exitConfig
	}
	return exitFailure
}
