// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the CVFlow CLI.
package main

import (
	"cvflow/cli/cmd"
)

func main() {
	cmd.Execute()
}
