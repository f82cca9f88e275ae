// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command a11ylint checks JSX and TSX markup for accessibility conventions.
//
// Usage:
//
//	a11ylint check [paths...]          # lint files or directories
//	a11ylint check --diff changes.diff # only report added lines
//	a11ylint watch [dir]               # re-lint on save
//	a11ylint serve                     # HTTP lint API
//	a11ylint rules                     # list rules
//	a11ylint init                      # write .a11ylint.yaml
//
// Exit codes: 0 clean or warnings only, 1 blocking findings, 2 usage or
// I/O failure.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(os.Stderr, "a11ylint: %v\n", exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintf(os.Stderr, "a11ylint: %v\n", err)
	return ExitFailure
}
