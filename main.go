// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 New Earth Lab
//
// Interbus - master-side CLI for NKT Photonics laser modules.

package main

import (
	"os"

	"github.com/New-Earth-Lab/interbus/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
