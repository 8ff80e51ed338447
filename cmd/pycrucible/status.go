// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	okColor  = color.New(color.FgGreen, color.Bold)
	errColor = color.New(color.FgRed, color.Bold)
)

// printSuccess writes a green-highlighted status line to w.
func printSuccess(w io.Writer, format string, args ...interface{}) {
	okColor.Fprint(w, "pycrucible: ")
	fmt.Fprintf(w, format+"\n", args...)
}

// printFailure writes a red-highlighted error line to w.
func printFailure(w io.Writer, format string, args ...interface{}) {
	errColor.Fprint(w, "pycrucible: error: ")
	fmt.Fprintf(w, format+"\n", args...)
}
