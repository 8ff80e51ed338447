// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package runnerbin holds the compiled runner executable as a byte
// constant, linked in at compile time. Bin is populated by a build step
// that compiles cmd/pycrucible-runner and copies the result to
// runner_bin before this package is compiled; see the Makefile target
// "runner-bin". The packer refuses to build a bundle when Bin is empty.
package runnerbin

import _ "embed"

//go:embed runner_bin
var Bin []byte
